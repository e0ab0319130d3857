// SPDX-License-Identifier: MPL-2.0

package main

import cmd "aab-cli/cmd/aab"

func main() {
	cmd.Execute()
}
