package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"doctor", "config"} {
		if c, _, err := root.Find([]string{name}); err != nil || c.Name() != name {
			t.Fatalf("subcommand %q not registered", name)
		}
	}
	for _, flag := range []string{"audio", "model", "token", "output-dir", "backend"} {
		if root.Flags().Lookup(flag) == nil {
			t.Fatalf("flag --%s missing", flag)
		}
	}
	if got := root.Flags().Lookup("model").DefValue; got != "pyannote/speaker-diarization-3.1" {
		t.Fatalf("model default = %q", got)
	}
	if got := root.Flags().Lookup("output-dir").DefValue; got != "data/diarization" {
		t.Fatalf("output-dir default = %q", got)
	}
}

func TestVersion(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if strings.TrimSpace(out.String()) != "dyarize v"+version {
		t.Fatalf("version output = %q", out.String())
	}
}
