// SPDX-License-Identifier: MPL-2.0

// Package config loads and validates the mkelvis configuration: viper
// supplies defaults and unmarshalling, a CUE schema validates user config
// files before their values are merged in.
package config
