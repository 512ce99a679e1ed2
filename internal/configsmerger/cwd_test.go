package configsmerger

import "testing"

func TestResolveCwd(t *testing.T) {
	if got := ResolveCwd("", ""); got != "/" {
		t.Errorf("got %q, want /", got)
	}
	if got := ResolveCwd("", "/workdir-from-metadata"); got != "/workdir-from-metadata" {
		t.Errorf("got %q, want /workdir-from-metadata", got)
	}
}

func TestResolveCwdCLIOverridesMetadata(t *testing.T) {
	if got := ResolveCwd("/from-cli", "/workdir-from-metadata"); got != "/from-cli" {
		t.Errorf("got %q, want /from-cli", got)
	}
}
