package schemas

import (
	_ "embed"
)

//go:embed cat.graphql
var catSchema string

//go:embed user.graphql
var userSchema string

// Schema is the complete GraphQL document served at /graphql.
func Schema() string {
	return baseSchema + userSchema + catSchema
}

const baseSchema = `
schema {
	query: Query
	mutation: Mutation
}

scalar DateTime
`
