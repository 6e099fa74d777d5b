package certstore

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestCatalog_AddAndLookup(t *testing.T) {
	// WHY: Verifies the catalog stores a converted certificate with
	// correct metadata and retrieves it by fingerprint.
	t.Parallel()
	ca := newTestCA(t, "Catalog CA")
	leaf := newTestLeaf(t, ca, "catalog.example.com", 2)
	catalog := newTestCatalog(t)

	added, err := catalog.Add(leaf.cert, "leaf.pem")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !added {
		t.Error("expected first insert to add a row")
	}

	records, err := catalog.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len = %d, want 1", len(records))
	}
	rec := records[0]
	if rec.SubjectCN != "catalog.example.com" {
		t.Errorf("SubjectCN = %q, want catalog.example.com", rec.SubjectCN)
	}
	if rec.CertType != "leaf" {
		t.Errorf("CertType = %q, want leaf", rec.CertType)
	}
	if rec.KeyType != "ECDSA P-256" {
		t.Errorf("KeyType = %q, want ECDSA P-256", rec.KeyType)
	}
	if rec.Source != "leaf.pem" {
		t.Errorf("Source = %q, want leaf.pem", rec.Source)
	}
	if len(rec.SANs) != 1 || rec.SANs[0] != "catalog.example.com" {
		t.Errorf("SANs = %v, want [catalog.example.com]", rec.SANs)
	}
	if !bytes.Equal(rec.DER, leaf.der) {
		t.Error("stored DER differs from the certificate's encoding")
	}

	got, err := catalog.ByFingerprint(rec.Fingerprint)
	if err != nil {
		t.Fatalf("ByFingerprint: %v", err)
	}
	if got == nil || got.SubjectCN != rec.SubjectCN {
		t.Error("fingerprint lookup did not return the stored record")
	}

	missing, err := catalog.ByFingerprint("deadbeef")
	if err != nil {
		t.Fatalf("ByFingerprint(missing): %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown fingerprint")
	}
}

func TestCatalog_DuplicateIgnored(t *testing.T) {
	// WHY: The same certificate imported from two sources keeps its
	// first row (INSERT OR IGNORE semantics), so repeat imports are
	// idempotent.
	t.Parallel()
	ca := newTestCA(t, "Catalog CA")
	catalog := newTestCatalog(t)

	if _, err := catalog.Add(ca.cert, "first.pem"); err != nil {
		t.Fatal(err)
	}
	added, err := catalog.Add(ca.cert, "second.pem")
	if err != nil {
		t.Fatal(err)
	}
	if added {
		t.Error("expected duplicate insert to be ignored")
	}

	records, err := catalog.All()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("len = %d, want 1", len(records))
	}
	if records[0].Source != "first.pem" {
		t.Errorf("Source = %q, want first.pem", records[0].Source)
	}
}

func TestCatalog_Summary(t *testing.T) {
	t.Parallel()
	ca := newTestCA(t, "Summary CA")
	leaf1 := newTestLeaf(t, ca, "one.example.com", 10)
	leaf2 := newTestLeaf(t, ca, "two.example.com", 11)
	catalog := newTestCatalog(t)

	for _, c := range []*testCert{ca, leaf1, leaf2} {
		if _, err := catalog.Add(c.cert, "test.pem"); err != nil {
			t.Fatal(err)
		}
	}

	summary, err := catalog.Summary()
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.Roots != 1 || summary.Leaves != 2 || summary.Intermediates != 0 {
		t.Errorf("summary = %+v, want 1 root, 2 leaves", summary)
	}
	if summary.Expired != 0 {
		t.Errorf("Expired = %d, want 0", summary.Expired)
	}
}

func TestCatalog_SaveAndLoad(t *testing.T) {
	// WHY: Round-trips the catalog through VACUUM INTO and ATTACH to
	// verify on-disk persistence preserves every row.
	t.Parallel()
	ca := newTestCA(t, "Persist CA")
	leaf := newTestLeaf(t, ca, "persist.example.com", 2)
	catalog := newTestCatalog(t)

	for _, c := range []*testCert{ca, leaf} {
		if _, err := catalog.Add(c.cert, "test.pem"); err != nil {
			t.Fatal(err)
		}
	}

	path := filepath.Join(t.TempDir(), "catalog.db")
	if err := catalog.SaveToDisk(path); err != nil {
		t.Fatalf("SaveToDisk: %v", err)
	}

	restored := newTestCatalog(t)
	if err := restored.LoadFromDisk(path); err != nil {
		t.Fatalf("LoadFromDisk: %v", err)
	}
	n, err := restored.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("Count = %d after reload, want 2", n)
	}
}
