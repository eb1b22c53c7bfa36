/*******************************************************************************
*
* Copyright 2024 Linden10
*
* This file is part of Eagls-engine-tool.
*
* Eagls-engine-tool is free software: you can redistribute it and/or modify it
* under the terms of the GNU General Public License as published by the Free
* Software Foundation, either version 3 of the License, or (at your option)
* any later version.
*
* Eagls-engine-tool is distributed in the hope that it will be useful, but
* WITHOUT ANY WARRANTY; without even the implied warranty of MERCHANTABILITY
* or FITNESS FOR A PARTICULAR PURPOSE. See the GNU General Public License for
* more details.
*
* You should have received a copy of the GNU General Public License along
* with Eagls-engine-tool. If not, see <http://www.gnu.org/licenses/>.
*
*******************************************************************************/

//Package diagnostics holds the CLI-facing stderr conventions shared by
//cmd/eagls's subcommands. Library packages (pak, script, graphics, ...)
//never import this package — they report failures through errors and leave
//it to the caller to decide whether and how to print them.
package diagnostics

import (
	"fmt"
	"os"
)

//ShowWarning prints a warning message on stderr.
func ShowWarning(msg string) {
	fmt.Fprintf(os.Stderr, "\x1b[33m\x1b[1m>>\x1b[0m %s\n", msg)
}

//ShowError prints an error message on stderr.
func ShowError(err error) {
	fmt.Fprintf(os.Stderr, "\x1b[31m\x1b[1m!!\x1b[0m %s\n", err.Error())
}

//Counter accumulates per-item outcomes across a batch job so the job can
//report "N succeeded, M failed" instead of aborting on the first error.
type Counter struct {
	Succeeded int
	Failed    int
}

//Record adds one outcome. A nil error counts as success.
func (c *Counter) Record(err error) {
	if err != nil {
		c.Failed++
		ShowError(err)
		return
	}
	c.Succeeded++
}

//Summary renders a one-line "N succeeded, M failed" report.
func (c *Counter) Summary() string {
	return fmt.Sprintf("%d succeeded, %d failed", c.Succeeded, c.Failed)
}
