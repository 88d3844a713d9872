package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sumdb/internal/ir"
	"github.com/roach88/sumdb/internal/testutil"
)

func TestParseTable_Single(t *testing.T) {
	table, err := ParseTable(testutil.UserSchema)
	require.NoError(t, err)
	assert.Equal(t, testutil.UserTable(), table)
}

func TestParseTable_Multiple(t *testing.T) {
	table, err := ParseTable(testutil.PetSchema)
	require.NoError(t, err)
	assert.Equal(t, testutil.PetTable(), table)
}

func TestParseTable_WhitespaceInsignificant(t *testing.T) {
	table, err := ParseTable("type   user{age:Int,\n\tnice :Bool ,name: String}")
	require.NoError(t, err)
	assert.Equal(t, testutil.UserTable(), table)
}

func TestParseTable_Rejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"uppercase table name", "type User { age: Int }"},
		{"unknown scalar", "type user { age: Float }"},
		{"empty body", "type user { }"},
		{"lowercase constructor", "type pet { cat { age: Int } }"},
		{"mixed body", "type pet { Cat { age: Int }, name: String }"},
		{"duplicate column", "type user { age: Int, age: Bool }"},
		{"duplicate constructor", "type pet { Cat { age: Int }, Cat { name: String } }"},
		{"empty variant", "type pet { Cat { } }"},
		{"column named true", "type t { true: Bool }"},
		{"column named null in variant", "type pet { Cat { null: Int } }"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTable(tt.src)
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.src, pe.Input)
		})
	}
}

func TestParseTable_DuplicateReportsPosition(t *testing.T) {
	_, err := ParseTable("type user {\n  age: Int,\n  age: Bool\n}")

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 3, pe.Pos.Line)
	assert.Contains(t, pe.Error(), "duplicate column age")
}

func TestParseTable_LiteralWordsAreNotColumns(t *testing.T) {
	for _, word := range []string{"true", "false", "null"} {
		src := "type t {\n  a: Int,\n  " + word + ": Bool\n}"
		_, err := ParseTable(src)

		var pe *ParseError
		require.ErrorAs(t, err, &pe, word)
		assert.Equal(t, 3, pe.Pos.Line)
		assert.Contains(t, pe.Error(), "column name "+word+" is reserved")
	}
}

func TestParseSelect(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want ir.Select
	}{
		{
			name: "no where",
			src:  "select name from user",
			want: ir.Select{
				Table:   "user",
				Columns: ir.ProjectColumns{Columns: []ir.ColumnName{"name"}},
				Where:   ir.MatchAll(),
			},
		},
		{
			name: "conjunction",
			src:  "select name from user where nice = true && age = 100",
			want: ir.Select{
				Table:   "user",
				Columns: ir.ProjectColumns{Columns: []ir.ColumnName{"name"}},
				Where:   ir.Conjoin(ir.Equals("nice", ir.BoolValue(true)), ir.Equals("age", ir.IntValue(100))),
			},
		},
		{
			name: "constructor projection",
			src:  "select Cat{age,name} from pet",
			want: ir.Select{
				Table:   "pet",
				Columns: ir.ProjectConstructor{Constructor: "Cat", Columns: []ir.ColumnName{"age", "name"}},
				Where:   ir.MatchAll(),
			},
		},
		{
			name: "chained conjunction folds left",
			src:  `select a, b from t where a = 1 && b = "x" && c = null`,
			want: ir.Select{
				Table:   "t",
				Columns: ir.ProjectColumns{Columns: []ir.ColumnName{"a", "b"}},
				Where: ir.Conjoin(
					ir.Conjoin(ir.Equals("a", ir.IntValue(1)), ir.Equals("b", ir.StringValue("x"))),
					ir.Equals("c", ir.NullValue{}),
				),
			},
		},
		{
			name: "literal filter",
			src:  "select a from t where false",
			want: ir.Select{
				Table:   "t",
				Columns: ir.ProjectColumns{Columns: []ir.ColumnName{"a"}},
				Where:   ir.Literal{Value: false},
			},
		},
		{
			name: "quoted keyword stays a string",
			src:  `select a from t where a = "true"`,
			want: ir.Select{
				Table:   "t",
				Columns: ir.ProjectColumns{Columns: []ir.ColumnName{"a"}},
				Where:   ir.Equals("a", ir.StringValue("true")),
			},
		},
		{
			name: "negative int",
			src:  "select a from t where a = -7",
			want: ir.Select{
				Table:   "t",
				Columns: ir.ProjectColumns{Columns: []ir.ColumnName{"a"}},
				Where:   ir.Equals("a", ir.IntValue(-7)),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := ParseSelect(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sel)
		})
	}
}

func TestParseSelect_Rejects(t *testing.T) {
	for _, src := range []string{
		"select from user",
		"select name user",
		"select name from user where",
		"select name from user where age = 2147483648",
		"select name from user where age == 1",
		"select Cat{} from pet",
	} {
		t.Run(src, func(t *testing.T) {
			_, err := ParseSelect(src)
			var pe *ParseError
			assert.ErrorAs(t, err, &pe)
		})
	}
}

func TestParseInsert(t *testing.T) {
	ins, err := ParseInsert(`insert into user 1 { age: 27, nice: false, name: "Egg" }`)
	require.NoError(t, err)
	assert.Equal(t, testutil.UserRows()[0], ins)

	ins, err = ParseInsert(`insert into pet 2 Dog { age: 21, name: "Mr Dog", likes_stick: true }`)
	require.NoError(t, err)
	assert.Equal(t, testutil.PetRows()[1], ins)
}

func TestParseInsert_EmptyValues(t *testing.T) {
	ins, err := ParseInsert("insert into t -3 {}")
	require.NoError(t, err)
	assert.Equal(t, int32(-3), ins.Key)
	assert.Equal(t, ir.SingleValue{Values: ir.Record{}}, ins.Value)
}

func TestParseInsert_Rejects(t *testing.T) {
	for _, src := range []string{
		"insert into user { age: 1 }",
		"insert into user 99999999999 { age: 1 }",
		"insert into user 1 { age: 1, age: 2 }",
		"insert into user 1 { age: 1.5 }",
		"insert user 1 { age: 1 }",
	} {
		t.Run(src, func(t *testing.T) {
			_, err := ParseInsert(src)
			var pe *ParseError
			assert.ErrorAs(t, err, &pe)
		})
	}
}

func TestParseStatement(t *testing.T) {
	stmt, err := ParseStatement(testutil.PetSchema)
	require.NoError(t, err)
	assert.Equal(t, DefineStmt{Table: testutil.PetTable()}, stmt)

	stmt, err = ParseStatement("select name from user")
	require.NoError(t, err)
	assert.IsType(t, SelectStmt{}, stmt)

	stmt, err = ParseStatement(`insert into pet 1 Cat { age: 27, name: "Mr Cat" }`)
	require.NoError(t, err)
	assert.Equal(t, InsertStmt{Insert: testutil.PetRows()[0]}, stmt)

	_, err = ParseStatement("delete from user")
	assert.Error(t, err)
}

func TestParseScript(t *testing.T) {
	src := `
-- schema
type user { age: Int, nice: Bool, name: String };
insert into user 1 { age: 27, nice: false, name: "Egg" }
insert into user 2 { age: 100, nice: true, name: "Horse" };;
select name from user where nice = true
`
	stmts, err := ParseScript(src)
	require.NoError(t, err)
	require.Len(t, stmts, 4)
	assert.IsType(t, DefineStmt{}, stmts[0])
	assert.IsType(t, InsertStmt{}, stmts[1])
	assert.IsType(t, InsertStmt{}, stmts[2])
	assert.IsType(t, SelectStmt{}, stmts[3])
}

func TestFormatTable_RoundTrip(t *testing.T) {
	for _, table := range []ir.Table{testutil.UserTable(), testutil.PetTable()} {
		t.Run(string(table.Name), func(t *testing.T) {
			back, err := ParseTable(FormatTable(table))
			require.NoError(t, err)
			assert.Equal(t, table, back)
		})
	}
}

func TestFormatTable(t *testing.T) {
	assert.Equal(t,
		"type pet { Cat { age: Int, name: String }, Dog { age: Int, likes_stick: Bool, name: String } }",
		FormatTable(testutil.PetTable()))
}
