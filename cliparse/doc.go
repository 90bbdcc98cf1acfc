// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Journal database (default: file:quickpoll.db)
  - DatabaseType: sqlite (default) or postgres
  - TokenSalt: Secret for principal token HMAC (required)
  - EventsBackend: none (default), redis or amqp
  - RateLimitRPS / RateLimitBurst: per-principal limits on mutations

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type
	-events       Event backend
	-token-salt   Principal token salt
	-env-file     .env file to load (default .env)

# Environment Variables

Flags fall back to environment variables:

	PORT           → -p
	DATABASE_URL   → -d
	DATABASE_TYPE  → -t
	EVENTS_BACKEND → -events
	TOKEN_SALT     → -token-salt
	ENV_FILE       → -env-file

Backend settings are environment only: REDIS_URL, REDIS_CHANNEL, AMQP_URL,
AMQP_QUEUE, RATE_LIMIT_RPS, RATE_LIMIT_BURST.

CLI flags take precedence over environment variables, which take precedence
over the .env file.

# Validation

ParseFlags returns an error if TOKEN_SALT is missing, or if a numeric,
database type or backend value is not recognised.
*/
package cliparse
