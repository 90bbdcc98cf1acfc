// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the QuickPoll API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(store, hub, cfg)

# Endpoints

Health:

	GET /health

Principals:

	POST /principals    - Issue a principal and its token
	GET  /principals/me - Polls the caller created and voted in

Poll lifecycle (token required, rate limited per principal):

	POST /polls            - Create poll
	POST /polls/{id}/votes - Cast a vote
	POST /polls/{id}/end   - End poll (creator, after deadline)

Queries (public):

	GET /polls                           - All polls (?status=, ?creator=)
	GET /polls/count                     - Number of polls ever created
	GET /polls/{id}                      - Poll details
	GET /polls/{id}/results              - Tallies and leaders
	GET /polls/{id}/voters/{principal}   - Whether principal has voted
	GET /polls/{id}/live                 - Websocket results feed

POST /principals is rate limited by hashed client IP since the caller has
no principal yet.
*/
package router
