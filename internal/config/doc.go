// Package config holds run configuration for contactscan.
//
// Values come from NewConfig defaults, then the .contactscan YAML file, then
// CONTACTSCAN_ environment variables (optionally read from a .env file), and
// finally CLI flags.
package config
