package configsmerger

import (
	"reflect"
	"testing"
)

func TestResolveCommand(t *testing.T) {
	tests := []struct {
		name                           string
		cliEntry, cliCmd, metaEntry, metaCmd []string
		want                           []string
		wantErr                        bool
	}{
		{name: "only CLI cmd", cliCmd: []string{"cmd-cli"}, want: []string{"cmd-cli"}},
		{name: "only metadata cmd", metaCmd: []string{"cmd-metadata"}, want: []string{"cmd-metadata"}},
		{name: "CLI cmd overrides metadata cmd", cliCmd: []string{"cmd-cli"}, metaCmd: []string{"cmd-metadata"}, want: []string{"cmd-cli"}},
		{name: "only CLI entrypoint", cliEntry: []string{"entry-cli"}, want: []string{"entry-cli"}},
		{name: "only metadata entrypoint", metaEntry: []string{"entry-metadata"}, want: []string{"entry-metadata"}},
		{
			name: "metadata entrypoint + metadata cmd", metaEntry: []string{"entry-metadata"}, metaCmd: []string{"cmd-metadata"},
			want: []string{"entry-metadata", "cmd-metadata"},
		},
		{
			name: "CLI entrypoint + CLI cmd", cliEntry: []string{"entry-cli"}, cliCmd: []string{"cmd-cli"},
			want: []string{"entry-cli", "cmd-cli"},
		},
		{
			name: "metadata entrypoint + CLI cmd", metaEntry: []string{"entry-metadata"}, cliCmd: []string{"cmd-cli"},
			want: []string{"entry-metadata", "cmd-cli"},
		},
		{
			name: "CLI entrypoint overrides metadata entrypoint and metadata cmd",
			cliEntry: []string{"entry-cli"}, metaEntry: []string{"entry-metadata"}, metaCmd: []string{"cmd-metadata"},
			want: []string{"entry-cli"},
		},
		{name: "nothing provided", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveCommand(tt.cliEntry, tt.cliCmd, tt.metaEntry, tt.metaCmd)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveCommand returned error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
