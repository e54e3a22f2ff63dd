// Package kernel holds the value objects shared by the order domain.
//
// UUID identifies people resolved through the user directory: agents, follow-up
// workers and order creators. Orders themselves use database issued numeric ids.
package kernel
