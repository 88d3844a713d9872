package testutil

import "github.com/roach88/sumdb/internal/ir"

// UserSchema is the text form of UserTable.
const UserSchema = `type user { age: Int, nice: Bool, name: String }`

// PetSchema is the text form of PetTable.
const PetSchema = `type pet { Cat { age: Int, name: String }, Dog { age: Int, name: String, likes_stick: Bool } }`

// UserTable is a single-constructor table with one column of each scalar type.
func UserTable() ir.Table {
	return ir.Table{
		Name: "user",
		Columns: ir.SingleConstructor{Columns: ir.ColumnSet{
			"age":  ir.ScalarInt,
			"nice": ir.ScalarBool,
			"name": ir.ScalarString,
		}},
	}
}

// PetTable is a tagged union where likes_stick exists only on Dog.
func PetTable() ir.Table {
	return ir.Table{
		Name: "pet",
		Columns: ir.MultipleConstructors{Variants: map[ir.Constructor]ir.ColumnSet{
			"Cat": {"age": ir.ScalarInt, "name": ir.ScalarString},
			"Dog": {"age": ir.ScalarInt, "name": ir.ScalarString, "likes_stick": ir.ScalarBool},
		}},
	}
}

// UserRows are Egg, Horse and Log under keys 1, 2 and 3.
func UserRows() []ir.Insert {
	return []ir.Insert{
		userRow(1, 27, false, "Egg"),
		userRow(2, 100, true, "Horse"),
		userRow(3, 46, false, "Log"),
	}
}

// PetRows are a Cat under key 1 and a Dog under key 2.
func PetRows() []ir.Insert {
	return []ir.Insert{
		{Table: "pet", Key: 1, Value: ir.MultipleValue{Constructor: "Cat", Values: ir.Record{
			"age":  ir.IntValue(27),
			"name": ir.StringValue("Mr Cat"),
		}}},
		{Table: "pet", Key: 2, Value: ir.MultipleValue{Constructor: "Dog", Values: ir.Record{
			"age":         ir.IntValue(21),
			"name":        ir.StringValue("Mr Dog"),
			"likes_stick": ir.BoolValue(true),
		}}},
	}
}

func userRow(key, age int32, nice bool, name string) ir.Insert {
	return ir.Insert{Table: "user", Key: key, Value: ir.SingleValue{Values: ir.Record{
		"age":  ir.IntValue(age),
		"nice": ir.BoolValue(nice),
		"name": ir.StringValue(name),
	}}}
}
