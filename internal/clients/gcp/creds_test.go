package gcp

import "testing"

func TestClientOptions(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS_JSON", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	if got := ClientOptions(""); len(got) != 0 {
		t.Fatalf("expected default credentials, got %d options", len(got))
	}
	if got := ClientOptions(`{"type":"service_account"}`); len(got) != 1 {
		t.Fatalf("inline json: got %d options", len(got))
	}
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/etc/gcp.json")
	if got := ClientOptions(""); len(got) != 1 {
		t.Fatalf("env file: got %d options", len(got))
	}
}
