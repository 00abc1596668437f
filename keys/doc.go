// Package keys defines the canonical key event shared by all terminal backends.
//
// Every backend adapter converts its native key representation into Event with a
// pure, total function: input that has no canonical mapping becomes an Unknown
// event carrying a backend-specific description, so consumers decide whether to
// ignore or log it. The package has no dependencies so both delivery paths
// (worker channel and async stream) share it without coupling.
package keys
