// Package alarm contains core domain types for the alarm registry.
//
// It defines Alarm (one scheduled one-shot timed event) and Firing (the
// event emitted when an alarm expires), with Clone helpers to avoid
// leaking internal references.
package alarm
