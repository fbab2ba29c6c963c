package postgres

const createActivitiesTable = `CREATE TABLE IF NOT EXISTS %s (
    name             text PRIMARY KEY,
    description      text NOT NULL DEFAULT '',
    schedule         text NOT NULL DEFAULT '',
    max_participants integer NOT NULL,
    participants     text[] NOT NULL DEFAULT '{}'
)`
