// Package host declares the services a browser shell offers to the
// experiments add-on: panel registration, periodic sync, row storage,
// messaging, the experiment override API and about: page registration.
//
// The add-on receives every service through a Host handle at construction
// and never reaches into ambient host state. Reference implementations live
// under internal/providers and internal/registry.
package host
