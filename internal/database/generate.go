package database

// Regenerate schema.sql and the sqlc query code after changing migrations or query.sql:
//   go generate ./internal/database
//
// or `make generate`.

//go:generate sh -c "cd ../.. && go run internal/database/tools/generate_schema.go"
//go:generate sh -c "cd ../.. && sqlc generate -f internal/database/sqlc/sqlc.yaml"
