package model

// All lists every persisted model, in migration order.
func All() []any {
	return []any{
		&Profile{},
		&Task{},
		&Application{},
		&Message{},
		&Review{},
		&Notification{},
		&NotificationDelivery{},
		&Category{},
	}
}
