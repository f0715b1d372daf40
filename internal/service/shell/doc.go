// Package shell implements the foreground actor: it parses interactive
// commands (Start_Alarm, Change_Alarm, Cancel_Alarm, View_Alarms), applies
// them to the registry, renders the outcomes, and runs the expiry worker
// alongside the read loop for the lifetime of the process.
package shell
