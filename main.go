// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/scanbridge/scanbridge/cmd/scanbridge"

func main() {
	cmd.Execute()
}
