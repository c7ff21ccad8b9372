package db

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

// Patient deletion is a single DELETE FROM patients; the database owns the
// cleanup of everything reachable from there. Every foreign key pointing at
// one of those parents must therefore declare a referential action, or the
// cascade stops with a constraint violation at the first documented visit.
func TestCoreSchema_ReferentialActions(t *testing.T) {
	path := filepath.Join("..", "..", "..", "migrations", "001_core.sql")
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open schema: %v", err)
	}
	defer f.Close()

	parentRef := regexp.MustCompile(`REFERENCES (patients|visits|general_visit_details|orthodontic_plans|root_canal_plans) \(id\)`)

	var sawPaymentUnlink bool
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if !parentRef.MatchString(text) {
			continue
		}
		if !strings.Contains(text, "ON DELETE") {
			t.Errorf("%s:%d: foreign key without ON DELETE action: %s",
				filepath.Base(path), line, strings.TrimSpace(text))
		}
		if strings.Contains(text, "ON DELETE SET NULL") {
			sawPaymentUnlink = true
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("read schema: %v", err)
	}

	// Payments may link to another patient's visit, so they must be
	// unlinked rather than removed when the visit goes away.
	if !sawPaymentUnlink {
		t.Error("expected payments.visit_id to use ON DELETE SET NULL")
	}
}
