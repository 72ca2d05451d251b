// Package flow drives complete USER_SRP_AUTH attempts: one SRP session per attempt, the two
// provider round trips and the retry policy around them.
//
//go:generate go tool mockgen -destination=mock_challenger.go -package=flow github.com/fzdarsky/cognito-srp/internal/flow Challenger
package flow
