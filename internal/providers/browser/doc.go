// Package browser renders the about:experiments page.
//
// A Page is created per navigation by the factory returned from
// NewFactory. Load fetches the configuration and the enabled set in
// parallel, merges them, and appends one <li> per experiment to the
// document's #list container. Click flips a row's isenabled attribute and
// forwards the new state to the host override service without waiting
// for it.
//
// Registry is the host side: it maps about: descriptions to factories.
package browser
