package minio

import "testing"

func TestObjectURL(t *testing.T) {
	client, err := NewClient("localhost:9000", "key", "secret", false)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	public := NewStorage(client, "https://cdn.example.com/")
	if got := public.objectURL("itineraries", "u1/trip 1.html"); got != "https://cdn.example.com/itineraries/u1/trip%201.html" {
		t.Fatalf("unexpected public url %q", got)
	}

	direct := NewStorage(client, "")
	if got := direct.objectURL("itineraries", "a.html"); got != "http://localhost:9000/itineraries/a.html" {
		t.Fatalf("unexpected endpoint url %q", got)
	}
}
