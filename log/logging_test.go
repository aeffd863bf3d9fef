/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/crewjam/rfc5424"
)

func TestNilLoggerNoop(t *testing.T) {
	var l *Logger
	if err := l.Debugf("hello %d", 1); err != nil {
		t.Fatal(err)
	}
	if err := l.SetLevel(DEBUG); err != nil {
		t.Fatal(err)
	}
	l.AddWriter(&bytes.Buffer{}) // must not panic
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	if err := l.SetLevel(WARN); err != nil {
		t.Fatal(err)
	}
	if err := l.Infof("should not appear"); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output below configured level, got %q", buf.String())
	}
	if err := l.Errorf("boom %d", 42); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "boom 42") {
		t.Fatalf("expected message in output, got %q", buf.String())
	}
}

func TestStructuredOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	if err := l.Warn("connection reset", rfc5424.SDParam{Name: "session", Value: "42"}); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected structured output to be written")
	}
}
