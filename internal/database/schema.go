package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates the tables the relational backend reads and writes. Tables
// are only created when absent; existing tables are never altered.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS states (
		id         VARCHAR(60)  NOT NULL PRIMARY KEY,
		created_at DATETIME(6)  NOT NULL,
		updated_at DATETIME(6)  NOT NULL,
		name       VARCHAR(128) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS users (
		id         VARCHAR(60)  NOT NULL PRIMARY KEY,
		created_at DATETIME(6)  NOT NULL,
		updated_at DATETIME(6)  NOT NULL,
		email      VARCHAR(128) NOT NULL,
		password   VARCHAR(128) NOT NULL,
		first_name VARCHAR(128) NOT NULL DEFAULT '',
		last_name  VARCHAR(128) NOT NULL DEFAULT ''
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS amenities (
		id         VARCHAR(60)  NOT NULL PRIMARY KEY,
		created_at DATETIME(6)  NOT NULL,
		updated_at DATETIME(6)  NOT NULL,
		name       VARCHAR(128) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS cities (
		id         VARCHAR(60)  NOT NULL PRIMARY KEY,
		created_at DATETIME(6)  NOT NULL,
		updated_at DATETIME(6)  NOT NULL,
		state_id   VARCHAR(60)  NOT NULL,
		name       VARCHAR(128) NOT NULL,
		KEY idx_cities_state (state_id),
		CONSTRAINT fk_cities_state FOREIGN KEY (state_id) REFERENCES states (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS places (
		id               VARCHAR(60)   NOT NULL PRIMARY KEY,
		created_at       DATETIME(6)   NOT NULL,
		updated_at       DATETIME(6)   NOT NULL,
		city_id          VARCHAR(60)   NOT NULL,
		user_id          VARCHAR(60)   NOT NULL,
		name             VARCHAR(128)  NOT NULL,
		description      VARCHAR(1024) NOT NULL DEFAULT '',
		number_rooms     INT           NOT NULL DEFAULT 0,
		number_bathrooms INT           NOT NULL DEFAULT 0,
		max_guest        INT           NOT NULL DEFAULT 0,
		price_by_night   INT           NOT NULL DEFAULT 0,
		latitude         DOUBLE        NOT NULL DEFAULT 0,
		longitude        DOUBLE        NOT NULL DEFAULT 0,
		KEY idx_places_city (city_id),
		KEY idx_places_user (user_id),
		CONSTRAINT fk_places_city FOREIGN KEY (city_id) REFERENCES cities (id),
		CONSTRAINT fk_places_user FOREIGN KEY (user_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id         VARCHAR(60)   NOT NULL PRIMARY KEY,
		created_at DATETIME(6)   NOT NULL,
		updated_at DATETIME(6)   NOT NULL,
		place_id   VARCHAR(60)   NOT NULL,
		user_id    VARCHAR(60)   NOT NULL,
		text       VARCHAR(1024) NOT NULL,
		KEY idx_reviews_place (place_id),
		CONSTRAINT fk_reviews_place FOREIGN KEY (place_id) REFERENCES places (id),
		CONSTRAINT fk_reviews_user FOREIGN KEY (user_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS place_amenity (
		place_id   VARCHAR(60) NOT NULL,
		amenity_id VARCHAR(60) NOT NULL,
		PRIMARY KEY (place_id, amenity_id),
		CONSTRAINT fk_pa_place FOREIGN KEY (place_id) REFERENCES places (id),
		CONSTRAINT fk_pa_amenity FOREIGN KEY (amenity_id) REFERENCES amenities (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates any missing table.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
