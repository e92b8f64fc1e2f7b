// Package core defines the domain types shared by every interviewkit
// component: sessions and their lifecycle, turns, score records, security
// verdicts, final verdicts and the collaborator contracts (résumé store,
// result store) the coordinator depends on. It contains no policy and no
// reasoning logic; those live in the agent and engine packages.
package core
