package validator

import "testing"

const table = "app_portfolio"

func TestValidateAcceptsSelect(t *testing.T) {
	r := Validate("SELECT * FROM app_portfolio", table)
	if !r.Ok {
		t.Fatalf("expected ok, got rejected: %s", r.Reason)
	}
}

func TestValidateAcceptsWith(t *testing.T) {
	r := Validate("WITH recent AS (SELECT * FROM app_portfolio) SELECT * FROM recent", table)
	if !r.Ok {
		t.Fatalf("expected ok, got rejected: %s", r.Reason)
	}
}

func TestValidateRejectsNonSelectPrefix(t *testing.T) {
	r := Validate("SHOW TABLES", table)
	if r.Ok {
		t.Fatal("expected rejection")
	}
}

func TestValidateIsCaseInsensitive(t *testing.T) {
	r := Validate("select * from app_portfolio", table)
	if !r.Ok {
		t.Fatalf("expected ok, got rejected: %s", r.Reason)
	}
}

func TestValidateRejectsBlacklistedKeyword(t *testing.T) {
	cases := []string{
		"SELECT * FROM app_portfolio; DROP TABLE app_portfolio",
		"SELECT * FROM app_portfolio WHERE 1=1; DELETE FROM app_portfolio",
		"WITH x AS (INSERT INTO app_portfolio VALUES (1)) SELECT * FROM x",
	}
	for _, sql := range cases {
		r := Validate(sql, table)
		if r.Ok {
			t.Errorf("expected rejection for %q", sql)
		}
	}
}

func TestValidateDoesNotFalsePositiveOnSubstring(t *testing.T) {
	// "created_at" contains "CREATE" as a substring but not as a whole word.
	r := Validate("SELECT created_at FROM app_portfolio", table)
	if !r.Ok {
		t.Fatalf("expected ok (created_at is not the CREATE keyword), got rejected: %s", r.Reason)
	}
}

func TestValidateRejectsMultipleStatements(t *testing.T) {
	r := Validate("SELECT * FROM app_portfolio; SELECT * FROM app_portfolio", table)
	if r.Ok {
		t.Fatal("expected rejection for multiple statements")
	}
}

func TestValidateAllowsTrailingSemicolon(t *testing.T) {
	r := Validate("SELECT * FROM app_portfolio;", table)
	if !r.Ok {
		t.Fatalf("expected ok, got rejected: %s", r.Reason)
	}
}

func TestValidateAllowsTrailingSemicolonWithComment(t *testing.T) {
	r := Validate("SELECT * FROM app_portfolio; -- trailing comment", table)
	if !r.Ok {
		t.Fatalf("expected ok, got rejected: %s", r.Reason)
	}
}

func TestValidateRejectsMissingTableReference(t *testing.T) {
	r := Validate("SELECT * FROM other_table", table)
	if r.Ok {
		t.Fatal("expected rejection for missing required table")
	}
}

func TestValidateRejectsEmpty(t *testing.T) {
	r := Validate("   ", table)
	if r.Ok {
		t.Fatal("expected rejection for empty statement")
	}
}

func TestValidateCollapsesWhitespace(t *testing.T) {
	r := Validate("SELECT   *\n\nFROM\tapp_portfolio", table)
	if !r.Ok {
		t.Fatalf("expected ok, got rejected: %s", r.Reason)
	}
}
