// SPDX-License-Identifier: MPL-2.0

// mkelvis generates surfraw elvi from declarative option directives.
package main

import cmd "mkelvis-cli/cmd/mkelvis"

func main() {
	cmd.Execute()
}
