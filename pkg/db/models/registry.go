package models

// All lists every persisted model, parents first.
func All() []any {
	return []any{
		&Account{},
		&Call{},
		&Lead{},
		&Report{},
		&DailyTask{},
		&NumberUpload{},
	}
}
