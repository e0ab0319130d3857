// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for aab.
//
// This package implements the Cobra command hierarchy for the aab CLI:
// the root command plus subcommands for building and packaging add-ons,
// compiling UI resources, generating manifests, and cleaning build output.
package cmd
