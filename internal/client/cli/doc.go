// Package cli implements bmctl, the BoostManager command-line client.
//
// The command tree is built with cobra. Global flags select the server, the
// local session database and the request timeout; the App behind every
// command is created in the root PersistentPreRunE and restores the saved
// session before the command runs.
//
//	bmctl auth signup|confirm|login|logout|recover|reset|me
//	bmctl onboarding
//	bmctl orders list|get|create|update|delete|export
//	bmctl dashboard | payroll | games | rate | rates
//	bmctl admin summary|audit|errors|watch
package cli
