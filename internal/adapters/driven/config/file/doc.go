// Package file provides file-based implementations of driven port interfaces.
//
// ConfigStore keeps application settings in ~/.sitesearch/config.toml.
package file
