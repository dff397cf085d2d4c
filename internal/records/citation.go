package records

import "fmt"

// rareBookRoomMarker in the holding location field means the item lives in
// the Law Library's rare book room rather than at Burns.
const rareBookRoomMarker = "BCLL RBR"

// burnsCitation formats the preferred citation for items held at the
// John J. Burns Library.
func burnsCitation(title, date, handleURL string) string {
	return fmt.Sprintf("%s, %s, John J. Burns Library, Boston College, %s.", title, date, handleURL)
}

// lawCitation formats the preferred citation for items held in the Law
// Library rare book room. room may include a sub-location, e.g. "BCLL RBR Box 4".
func lawCitation(title, date, room, handleURL string) string {
	return fmt.Sprintf("%s, %s, %s, Daniel R. Coquillette Rare Book Room, Boston College Law Library, %s.",
		title, date, room, handleURL)
}
