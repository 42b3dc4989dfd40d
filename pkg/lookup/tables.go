package lookup

// Embedded display-name tables. Airline keys are ICAO operator codes,
// aircraft keys are ICAO type designators. The sets below cover the carriers
// and types commonly seen over central Europe plus the major intercontinental
// operators; unknown codes simply fall back to the raw code at the call site.

var airlineNames = map[string]string{
	"AAL": "American Airlines",
	"ACA": "Air Canada",
	"AEE": "Aegean Airlines",
	"AFL": "Aeroflot",
	"AFR": "Air France",
	"AUA": "Austrian",
	"AZA": "ITA Airways",
	"BAW": "British Airways",
	"BEL": "Brussels Airlines",
	"BER": "AirBerlin",
	"CCA": "Air China",
	"CFG": "Condor",
	"CPA": "Cathay Pacific",
	"CSA": "Czech Airlines",
	"DAL": "Delta Air Lines",
	"DLH": "Lufthansa",
	"EIN": "Aer Lingus",
	"EJU": "easyJet Europe",
	"ELY": "El Al",
	"ETD": "Etihad Airways",
	"ETH": "Ethiopian Airlines",
	"EWG": "Eurowings",
	"EZY": "easyJet",
	"FDX": "FedEx Express",
	"FIN": "Finnair",
	"GEC": "Lufthansa Cargo",
	"IBE": "Iberia",
	"ICE": "Icelandair",
	"KAL": "Korean Air",
	"KLM": "KLM",
	"LOT": "LOT Polish Airlines",
	"MSR": "EgyptAir",
	"NOZ": "Norwegian",
	"OMA": "Oman Air",
	"PGT": "Pegasus",
	"QTR": "Qatar Airways",
	"RYR": "Ryanair",
	"SAS": "SAS",
	"SIA": "Singapore Airlines",
	"SWR": "Swiss",
	"TAP": "TAP Air Portugal",
	"THY": "Turkish Airlines",
	"TRA": "Transavia",
	"UAE": "Emirates",
	"UAL": "United Airlines",
	"UPS": "UPS Airlines",
	"VLG": "Vueling",
	"WZZ": "Wizz Air",
}

var aircraftNames = map[string]string{
	"A19N": "A319neo",
	"A20N": "A320neo",
	"A21N": "A321neo",
	"A306": "A300-600",
	"A319": "A319",
	"A320": "A320",
	"A321": "A321",
	"A332": "A330-200",
	"A333": "A330-300",
	"A339": "A330-900",
	"A343": "A340-300",
	"A359": "A350-900",
	"A35K": "A350-1000",
	"A388": "A380",
	"AT76": "ATR 72",
	"B38M": "737 MAX 8",
	"B39M": "737 MAX 9",
	"B737": "737-700",
	"B738": "737-800",
	"B739": "737-900",
	"B744": "747-400",
	"B748": "747-8",
	"B752": "757-200",
	"B763": "767-300",
	"B772": "777-200",
	"B773": "777-300",
	"B77W": "777-300ER",
	"B788": "787-8",
	"B789": "787-9",
	"B78X": "787-10",
	"BCS1": "A220-100",
	"BCS3": "A220-300",
	"CRJ9": "CRJ-900",
	"DH8D": "Dash 8Q400",
	"E190": "E190",
	"E195": "E195",
	"E290": "E190-E2",
	"E295": "E195-E2",
	"MD11": "MD-11",
	"SF34": "Saab 340",
}
