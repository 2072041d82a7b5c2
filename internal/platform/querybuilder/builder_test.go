package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("user_id", "gameweek").
		From("predictions").
		Where(Eq("gameweek", 3), Gt("user_id", "u010")).
		OrderBy("user_id").
		Limit(51).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT user_id, gameweek FROM predictions WHERE gameweek = $1 AND user_id > $2 ORDER BY user_id LIMIT 51"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != 3 || args[1] != "u010" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_ExprSubquery(t *testing.T) {
	query, args, err := Select("id", "name").
		From("leagues").
		Where(Expr("id IN (SELECT league_id FROM league_members WHERE user_id = ?)", "u1")).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, name FROM leagues WHERE id IN (SELECT league_id FROM league_members WHERE user_id = $1)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "u1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("leagues").
		Columns("id", "name").
		Values("l1", "The Office League").
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO leagues (id, name) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "l1" || args[1] != "The Office League" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("leagues").
		Set("name", "renamed").
		Where(Eq("id", "l1")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE leagues SET name = $1 WHERE id = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "renamed" || args[1] != "l1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("league_score_snapshots").
		Where(Eq("league_id", "l1"), Eq("gameweek", 4)).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}

	wantQuery := "DELETE FROM league_score_snapshots WHERE league_id = $1 AND gameweek = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "l1" || args[1] != 4 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModels_MultiRow(t *testing.T) {
	type row struct {
		ID   string `db:"id"`
		Rank int    `db:"rank"`
	}

	query, args, err := InsertModels("league_score_snapshots", []any{
		row{ID: "u1", Rank: 1},
		row{ID: "u2", Rank: 2},
	}, "")
	if err != nil {
		t.Fatalf("build multi-row insert: %v", err)
	}

	wantQuery := "INSERT INTO league_score_snapshots (id, rank) VALUES ($1, $2), ($3, $4)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[0] != "u1" || args[3] != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}
}
