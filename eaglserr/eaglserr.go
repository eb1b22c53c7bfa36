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

//Package eaglserr collects the typed error taxonomy shared by the format
//packages that can fail (rng, cipher, lzss and graphics cannot). A Kind says which of a small,
//closed set of things went wrong; Err, when present, is the underlying cause
//and is reachable through errors.Unwrap.
package eaglserr

import "fmt"

//Kind classifies a failure so callers can branch on it without parsing
//strings.
type Kind int

const (
	//InvalidContainer means a .pak/.idx/.dat/.gr file failed a structural
	//check (wrong size, missing sibling file, bad magic region).
	InvalidContainer Kind = iota
	//NotFound means a named entry or section does not exist in an
	//otherwise-valid container.
	NotFound
	//FormatError means the container parsed structurally but a value inside
	//violates an invariant (oversized text, bad hex triplet, and so on).
	FormatError
	//CapacityExceeded means an operation would exceed a fixed-size limit
	//(too many directory entries, too many sections).
	CapacityExceeded
	//IoError wraps a failure from the underlying file collaborator.
	IoError
)

func (k Kind) String() string {
	switch k {
	case InvalidContainer:
		return "invalid container"
	case NotFound:
		return "not found"
	case FormatError:
		return "format error"
	case CapacityExceeded:
		return "capacity exceeded"
	case IoError:
		return "I/O error"
	default:
		return "unknown error"
	}
}

//Error is the concrete error type returned by every package in this module.
type Error struct {
	Kind   Kind
	Entry  string //offending entry or section name, if any
	Offset int64  //offending offset, if any; -1 if not applicable
	Err    error  //wrapped cause, if any
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Entry != "" {
		msg += fmt.Sprintf(" (entry %q)", e.Entry)
	}
	if e.Offset >= 0 {
		msg += fmt.Sprintf(" (offset 0x%X)", e.Offset)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

//Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

//New builds an *Error with no entry or offset attached.
func New(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Offset: -1, Err: cause}
}

//WithEntry builds an *Error naming the offending entry.
func WithEntry(kind Kind, entry string, cause error) *Error {
	return &Error{Kind: kind, Entry: entry, Offset: -1, Err: cause}
}

//WithOffset builds an *Error naming the offending offset.
func WithOffset(kind Kind, offset int64, cause error) *Error {
	return &Error{Kind: kind, Offset: offset, Err: cause}
}

//Collector is a wrapper around []error that simplifies batch operations
//where multiple items can fail independently and need to be aggregated for
//a single end-of-run report, instead of aborting the whole batch on the
//first failure.
type Collector struct {
	Errors []error
}

//Add adds an error to this collector. If nil is given, nothing happens, so
//you can safely write
//
//    c.Add(OperationThatMightFail())
//
//instead of
//
//    err := OperationThatMightFail()
//    if err != nil {
//        c.Add(err)
//    }
//
func (c *Collector) Add(err error) {
	if err != nil {
		c.Errors = append(c.Errors, err)
	}
}

//OK reports whether no error has been collected yet.
func (c *Collector) OK() bool {
	return len(c.Errors) == 0
}

//Count returns the number of errors collected so far.
func (c *Collector) Count() int {
	return len(c.Errors)
}
