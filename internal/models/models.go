package models

// All returns every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Session{},
		&Task{},
		&Comment{},
		&TaskRating{},
		&Activity{},
		&Notification{},
		&Message{},
	}
}
