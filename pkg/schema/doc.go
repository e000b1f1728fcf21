// Package schema holds lightweight calendar value objects (Time, Date, Event,
// Day..Year) used as scheduling inputs.
//
// These types store points in time; they are not a datetime arithmetic
// library. Values can be frozen, after which setters return ErrFrozen.
package schema
