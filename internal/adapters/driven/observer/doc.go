// Package observer provides CallbackObserver implementations.
//
// The callback orchestrator performs no output of its own. Deployments choose
// how transitions surface: log lines, span events on the inbound request's
// trace, or both through Multi.
package observer
