package postgres

// SQL for the events and bookings tables declared in internal/migrations.

const (
	eventColumns = `
			id, title, description, overview, image, venue, location,
			event_date, event_time, mode, audience, agenda, organizer, tags,
			slug, created_at, updated_at`

	queryInsertEvent = `
		INSERT INTO events (` + eventColumns + `
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	// queryUpdateEvent never touches created_at.
	queryUpdateEvent = `
		UPDATE events SET
			title = $2, description = $3, overview = $4, image = $5, venue = $6,
			location = $7, event_date = $8, event_time = $9, mode = $10, audience = $11,
			agenda = $12, organizer = $13, tags = $14, slug = $15, updated_at = $16
		WHERE id = $1
		RETURNING created_at
	`

	querySelectEventByID = `
		SELECT` + eventColumns + `
		FROM events
		WHERE id = $1
	`

	querySelectEventBySlug = `
		SELECT` + eventColumns + `
		FROM events
		WHERE slug = $1
	`

	// queryListEvents orders newest first; seq breaks created_at ties by insertion order.
	// A NULL limit means no limit.
	queryListEvents = `
		SELECT` + eventColumns + `
		FROM events
		ORDER BY created_at DESC, seq DESC
		LIMIT $1 OFFSET $2
	`

	queryCountEvents = `SELECT COUNT(*) FROM events`

	queryDeleteEvent = `DELETE FROM events WHERE id = $1`

	bookingColumns = `
			id, event_id, email, created_at, updated_at`

	queryInsertBooking = `
		INSERT INTO bookings (` + bookingColumns + `
		)
		VALUES ($1, $2, $3, $4, $5)
	`

	queryUpdateBooking = `
		UPDATE bookings SET
			event_id = $2, email = $3, updated_at = $4
		WHERE id = $1
		RETURNING created_at
	`

	querySelectBookingByID = `
		SELECT` + bookingColumns + `
		FROM bookings
		WHERE id = $1
	`

	queryListBookingsByEvent = `
		SELECT` + bookingColumns + `
		FROM bookings
		WHERE event_id = $1
		ORDER BY created_at DESC, seq DESC
	`

	queryCountBookings = `SELECT COUNT(*) FROM bookings`

	queryCountBookingsByEvent = `SELECT COUNT(*) FROM bookings WHERE event_id = $1`

	queryDeleteBooking = `DELETE FROM bookings WHERE id = $1`

	queryTablesExist = `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_name IN ('events', 'bookings')
	`
)
