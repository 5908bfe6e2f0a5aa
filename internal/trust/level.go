// Copyright 2026 The HostGrid Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package trust

import "fmt"

// Level is the security exchange tier asserted by a verified certificate.
// Levels are ordered: L1Public < L2Private < L3Protected < L4Secure.
type Level int

const (
	L1Public Level = iota + 1
	L2Private
	L3Protected
	L4Secure
)

var levelNames = map[Level]string{
	L1Public:    "1.public",
	L2Private:   "2.private",
	L3Protected: "3.protected",
	L4Secure:    "4.secure",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// AtLeast reports whether l meets or exceeds min.
func (l Level) AtLeast(min Level) bool {
	return l >= min
}

// ParseLevel parses the wire form of an exchange level ("1.public" ... "4.secure").
func ParseLevel(s string) (Level, error) {
	for level, name := range levelNames {
		if name == s {
			return level, nil
		}
	}
	return 0, fmt.Errorf("unknown exchange level %q", s)
}
