// Package domain contains the core business entities, value objects, and
// domain logic of the application: users and the lessons generated for them.
// It is independent of any specific infrastructure or delivery mechanism.
package domain
