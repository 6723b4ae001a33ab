package model

import "strings"

// Venue is a selectable conference
type Venue struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Tier string `json:"tier"`
}

// AStarVenues lists the A* conferences in display order
var AStarVenues = []Venue{
	{"ISCA", "ACM International Symposium on Computer Architecture", "A*"},
	{"SOSP", "ACM SIGOPS Symposium on Operating Systems Principles", "A*"},
	{"PODC", "ACM Symposium on Principles of Distributed Computing", "A*"},
	{"ASPLOS", "Architectural Support for Programming Languages and Operating Systems", "A*"},
	{"HPCA", "International Symposium on High Performance Computer Architecture", "A*"},
	{"OSDI", "Usenix Symposium on Operating Systems Design and Implementation", "A*"},
}

// AVenues lists the A conferences in display order
var AVenues = []Venue{
	{"HPDC", "ACM International Symposium on High Performance Distributed Computing", "A"},
	{"Middleware", "ACM/IFIP/USENIX International Middleware Conference", "A"},
	{"FAST", "Conference on File and Storage Technologies", "A"},
	{"ICS", "International Conference on Supercomputing", "A"},
	{"EuroSys", "Eurosys Conference", "A"},
	{"IPDPS", "IEEE International Parallel and Distributed Processing Symposium", "A"},
	{"SC", "International Conference for High Performance Computing, Networking, Storage and Analysis", "A"},
	{"ICDCS", "International Conference on Distributed Computing Systems", "A"},
	{"DISC", "International Symposium on Distributed Computing", "A"},
	{"USENIX", "Usenix Annual Technical Conference", "A"},
	{"HotOS", "USENIX Workshop on Hot Topics in Operating Systems", "A"},
}

// LookupVenue finds a venue by key, ignoring case
func LookupVenue(key string) (Venue, bool) {
	for _, list := range [][]Venue{AStarVenues, AVenues} {
		for _, v := range list {
			if strings.EqualFold(v.Key, key) {
				return v, true
			}
		}
	}
	return Venue{}, false
}

// IndexKey is the lower-cased key used in index stream ids
func IndexKey(venue string) string {
	return strings.ToLower(strings.TrimSpace(venue))
}
