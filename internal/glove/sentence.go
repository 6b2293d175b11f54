// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package glove

import (
	"errors"
	"fmt"
	"strconv"

	nmea "github.com/adrianmo/go-nmea"
)

// The serial bridge forwards each glove reading as an NMEA-style line:
//
//	$GLACC,<ax>,<ay>,<az>,<force>*<checksum>
const (
	TalkerGlove = "GL"
	TypeAccel   = "ACC"
)

// ErrUnexpectedSentence is returned for valid NMEA lines that are not
// glove readings (the bridge may interleave GPS or status sentences).
var ErrUnexpectedSentence = errors.New("unexpected NMEA sentence")

// AccelSentence is a parsed $GLACC line.
type AccelSentence struct {
	nmea.BaseSentence
	Ax    float64
	Ay    float64
	Az    float64
	Force float64
}

func init() {
	nmea.MustRegisterParser(TypeAccel, parseAccelSentence)
}

func parseAccelSentence(s nmea.BaseSentence) (nmea.Sentence, error) {
	p := nmea.NewParser(s)
	p.AssertType(TypeAccel)
	m := AccelSentence{
		BaseSentence: s,
		Ax:           p.Float64(0, "ax"),
		Ay:           p.Float64(1, "ay"),
		Az:           p.Float64(2, "az"),
		Force:        p.Float64(3, "force"),
	}
	return m, p.Err()
}

// ParseSentence parses one bridge line into a Reading.
func ParseSentence(line string) (Reading, error) {
	sentence, err := nmea.Parse(line)
	if err != nil {
		return Reading{}, fmt.Errorf("parse glove sentence: %w", err)
	}
	m, ok := sentence.(AccelSentence)
	if !ok {
		return Reading{}, fmt.Errorf("%w: %s", ErrUnexpectedSentence, sentence.Prefix())
	}
	return Reading{Ax: m.Ax, Ay: m.Ay, Az: m.Az, Force: m.Force}, nil
}

// FormatSentence renders a Reading the way the bridge firmware does.
func FormatSentence(r Reading) string {
	body := TalkerGlove + TypeAccel +
		"," + strconv.FormatFloat(r.Ax, 'f', 4, 64) +
		"," + strconv.FormatFloat(r.Ay, 'f', 4, 64) +
		"," + strconv.FormatFloat(r.Az, 'f', 4, 64) +
		"," + strconv.FormatFloat(r.Force, 'f', 4, 64)
	return "$" + body + "*" + nmea.Checksum(body)
}
