package metadata

import "testing"

func TestDedupeEnvOrderAndLastWins(t *testing.T) {
	got := DedupeEnv([]string{"PATH=/bin", "HOME=/root", "PATH=/usr/bin"})
	want := []EnvVar{{Key: "PATH", Value: "/usr/bin"}, {Key: "HOME", Value: "/root"}}
	if len(got) != len(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDedupeEnvNoValue(t *testing.T) {
	got := DedupeEnv([]string{"FOO"})
	if len(got) != 1 || got[0].Key != "FOO" || got[0].Value != "" {
		t.Errorf("got %+v", got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/image.meta"
	m := ImageMetadata{
		Cmd:     []string{"/bin/sh"},
		Entry:   []string{"/entry"},
		Workdir: "/app",
		Env:     []EnvVar{{Key: "FOO", Value: "bar"}},
	}
	if err := Save(path, m); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got.Workdir != m.Workdir || len(got.Cmd) != 1 || got.Cmd[0] != m.Cmd[0] {
		t.Errorf("got %+v, want %+v", got, m)
	}
	if len(got.Env) != 1 || got.Env[0] != m.Env[0] {
		t.Errorf("got env %+v, want %+v", got.Env, m.Env)
	}
}
