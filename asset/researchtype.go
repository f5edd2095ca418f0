// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Devite Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package asset

import (
	"fmt"
	"strings"

	"github.com/bitmark-inc/logger"

	"github.com/devite-inc/devited/fault"
)

// research type enumeration
type ResearchType uint64

// possible research type values
const (
	Nothing      ResearchType = iota // this must be the first value
	Paper        ResearchType = iota
	Dataset      ResearchType = iota
	Code         ResearchType = iota
	Experiment   ResearchType = iota
	Review       ResearchType = iota
	maximumValue ResearchType = iota // this must be the last value
	First        ResearchType = Nothing + 1
	Last         ResearchType = maximumValue - 1
	TypeCount    int          = int(Last) // count of research types
)

// internal conversion
func toString(r ResearchType) ([]byte, error) {
	switch r {
	case Nothing:
		return []byte{}, nil
	case Paper:
		return []byte("paper"), nil
	case Dataset:
		return []byte("dataset"), nil
	case Code:
		return []byte("code"), nil
	case Experiment:
		return []byte("experiment"), nil
	case Review:
		return []byte("review"), nil
	default:
		return []byte{}, fault.InvalidResearchType
	}
}

// convert a string to a research type
func fromString(in string) (ResearchType, error) {
	switch strings.ToLower(in) {
	case "":
		return Nothing, nil
	case "paper":
		return Paper, nil
	case "dataset":
		return Dataset, nil
	case "code":
		return Code, nil
	case "experiment":
		return Experiment, nil
	case "review":
		return Review, nil
	default:
		return Nothing, fault.InvalidResearchType
	}
}

// convert a research type to its string tag
func (researchType ResearchType) String() string {
	s, err := toString(researchType)
	if nil != err {
		logger.Panicf("invalid research type enumeration: %d", researchType)
	}
	return string(s)
}

// convert both enum value and tag, for debugging
func (researchType ResearchType) GoString() string {
	return fmt.Sprintf("<ResearchType#%d:%q>", uint64(researchType), researchType.String())
}

// valid research type if in range of First to Last
// Nothing is not considered as valid
func (researchType ResearchType) IsValid() bool {
	return researchType >= First && researchType <= Last
}

// convert a research type into JSON
func (researchType ResearchType) MarshalText() ([]byte, error) {
	return toString(researchType)
}

// convert a tag string to a research type enumeration value from JSON
func (researchType *ResearchType) UnmarshalText(s []byte) error {
	r, err := fromString(string(s))
	if nil != err {
		return err
	}
	*researchType = r
	return nil
}
