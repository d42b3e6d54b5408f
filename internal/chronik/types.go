// Package chronik defines the core record types shared across the crawl
// pipeline: incidents, their source citations, and the chronicle metadata row.
package chronik

import "time"

// ChroniclerName identifies this chronicle in every persisted record.
const ChroniclerName = "München Chronik"

// HomeRegion is the location label every incident starts with; specific
// sub-locations from the vocabulary are appended after it.
const HomeRegion = "München"

// Incident is one documented event. Identity is solely RgID (the canonical
// report URL), so re-processing the same URL replaces the prior row.
type Incident struct {
	RgID           string
	URL            string
	ChroniclerName string
	Title          string
	Description    string
	Date           time.Time
	City           string
	Tags           string
	Motives        string
	Contexts       string
	Factums        string
	Latitude       *float64
	Longitude      *float64
}

// Source is a single citation for an incident. An incident usually carries
// several; the natural key is (RgID, Name, URL).
type Source struct {
	RgID string
	Name string
	URL  string
}

// Chronicle is the static metadata row describing the data provider.
// It is upserted once at startup, keyed by ChroniclerName.
type Chronicle struct {
	ISO31661              string
	ISO31662              string
	Region                string
	ChroniclerName        string
	ChroniclerDescription string
	ChroniclerURL         string
	ChronicleSource       string
}

// MuenchenChronik returns the chronicle row for muenchen-chronik.de.
func MuenchenChronik() Chronicle {
	return Chronicle{
		ISO31661:       "DE",
		ISO31662:       "DE-BY",
		Region:         HomeRegion,
		ChroniclerName: ChroniclerName,
		ChroniclerDescription: "Durch die Recherche- und Dokumentationsarbeiten der " +
			"Fachinformationsstelle Rechtsextremismus in München (FIRM) und der " +
			"antifaschistischen Informations-, Dokumentations- und Archivstelle " +
			"München e. V. (a.i.d.a) sowie durch die Arbeit der Opferberatungs- und " +
			"Antidiskriminierungsstelle BEFORE, aber auch auf Grund von Zusendungen " +
			"von weiteren Münchner Organisationen und Einzelpersonen entsteht ein " +
			"(unvollständiges) Bild davon, welche Aktivitäten rechter Gruppen und " +
			"diskriminierende Vorfälle es in München (sowohl in der Stadt, als auch " +
			"im Landkreis) gibt.",
		ChroniclerURL:   "https://muenchen-chronik.de",
		ChronicleSource: "https://muenchen-chronik.de/chronik/",
	}
}
