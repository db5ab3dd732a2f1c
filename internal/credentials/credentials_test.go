package credentials

import (
	"errors"
	"testing"
)

// forceFileFallback pins token storage to the file store under a
// throwaway home directory so tests never touch a real keyring.
func forceFileFallback(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	useFile := true
	fileFallbackCache = &useFile
	t.Cleanup(func() { fileFallbackCache = nil })
}

func clearTokenEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{"_kau", "_kahai", "_karmt", "_kawlt", "ACCESS_TOKEN"} {
		t.Setenv(env, "")
	}
}

func TestLoadAllMissingIsFatal(t *testing.T) {
	forceFileFallback(t)
	clearTokenEnv(t)

	_, _, err := Load()
	if !errors.Is(err, ErrAllMissing) {
		t.Fatalf("err = %v, want ErrAllMissing", err)
	}
}

func TestLoadPartialSetWarnsButSucceeds(t *testing.T) {
	forceFileFallback(t)
	clearTokenEnv(t)
	t.Setenv("_kau", "value-a")
	t.Setenv("ACCESS_TOKEN", "value-b")

	set, missing, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if set["_kau"] != "value-a" || set["access_token"] != "value-b" {
		t.Errorf("set = %v", set)
	}
	if len(missing) != 3 {
		t.Errorf("missing = %v, want the three unset tokens", missing)
	}
}

func TestStoreAndLoadRoundTrip(t *testing.T) {
	forceFileFallback(t)
	clearTokenEnv(t)

	if err := Store("_karmt", "secret"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	set, _, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if set["_karmt"] != "secret" {
		t.Errorf("stored token not loaded, set = %v", set)
	}
}

func TestEnvironmentBeatsStoredValue(t *testing.T) {
	forceFileFallback(t)
	clearTokenEnv(t)

	if err := Store("_kau", "stored"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	t.Setenv("_kau", "from-env")

	set, _, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if set["_kau"] != "from-env" {
		t.Errorf("_kau = %q, want the environment value", set["_kau"])
	}
}

func TestDeleteRemovesToken(t *testing.T) {
	forceFileFallback(t)
	clearTokenEnv(t)

	if err := Store("_kawlt", "secret"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := Delete("_kawlt"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, _, err := Load(); !errors.Is(err, ErrAllMissing) {
		t.Errorf("token survived deletion, err = %v", err)
	}
}

func TestUnknownTokenRejected(t *testing.T) {
	forceFileFallback(t)

	if err := Store("session_id", "x"); err == nil {
		t.Error("unknown token accepted by Store")
	}
	if err := Delete("session_id"); err == nil {
		t.Error("unknown token accepted by Delete")
	}
}
