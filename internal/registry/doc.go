// Package registry is the reference host's home panel registry.
//
// Add-ons Register a panel id with an options callback, then Install,
// Update or Uninstall it over the add-on lifecycle. The shell side reads
// panels with Get/List and triggers a view's OnRefresh through Refresh.
package registry
