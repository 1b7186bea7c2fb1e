package model

// All lists the tables migrated at startup and in tests.
func All() []any {
	return []any{
		&User{},
		&Post{},
		&PostImage{},
		&Comment{},
		&Like{},
		&Follow{},
		&Notification{},
	}
}
