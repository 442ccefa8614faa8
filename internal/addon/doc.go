// Package addon is the experiments add-on itself: the bootstrap entry
// points a host calls (Startup, Shutdown, Install, Uninstall) and the
// lifecycle hooks they fan out to (OnInstall, OnUpdate, OnUninstall,
// OnTick).
//
// Startup registers the about:experiments page and the Experiments panel,
// installs or updates the panel depending on the reason, kicks off a
// background refresh and schedules an hourly one. Shutdown unregisters both;
// on uninstall or disable it also removes the panel, empties its dataset and
// clears every override the page may have set.
package addon
