// Package scoring computes the points a team earns when one of its drafted
// people dies.
package scoring

// MaxPoints is the bonus for a death at age zero; every year of age costs one
// point.
const MaxPoints = 100

// Bonus returns max(0, MaxPoints - age) where age = year - birthYear. Unknown
// birth years (<= 0) and birth years in the future score zero.
func Bonus(birthYear, year int) int {
	if birthYear <= 0 || birthYear > year {
		return 0
	}
	points := MaxPoints - (year - birthYear)
	if points < 0 {
		return 0
	}
	return points
}

// Age returns the age reached in year, or zero when birthYear is unknown.
func Age(birthYear, year int) int {
	if birthYear <= 0 || birthYear > year {
		return 0
	}
	return year - birthYear
}
