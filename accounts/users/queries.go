package users

const userColumns = `id, email, name, password_hash, external_uid, photo_url, title, phone, location, bio, created_at, updated_at`

const (
	queryFindByID = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`

	queryFindByEmail = `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1
	`

	queryFindByExternalUID = `
		SELECT ` + userColumns + `
		FROM users
		WHERE external_uid = $1
	`

	queryCreate = `
		INSERT INTO users (id, email, name, password_hash, external_uid, photo_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns

	// only binds a UID when none is present yet
	queryAttachExternalUID = `
		UPDATE users
		SET external_uid = $2, updated_at = NOW()
		WHERE id = $1 AND (external_uid IS NULL OR external_uid = $2)
		RETURNING ` + userColumns

	queryUpdateProfile = `
		UPDATE users
		SET name = COALESCE($2, name),
			photo_url = COALESCE($3, photo_url),
			title = COALESCE($4, title),
			phone = COALESCE($5, phone),
			location = COALESCE($6, location),
			bio = COALESCE($7, bio),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
)
