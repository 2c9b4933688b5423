package model

// ContractTypes is the catalog of agreements that can be generated,
// most requested first
var ContractTypes = []string{
	"Non-Disclosure Agreement (NDA)",
	"Employment Agreement",
	"Service Agreement",
	"Consulting Agreement",
	"Sales Contract",
	"Lease Agreement",
	"Term Sheet",
	"SAFE Note Agreement",
	"Convertible Note Agreement",
	"Equity Vesting Agreement",
	"Partnership Agreement",
	"Distribution Agreement",
	"Licensing Agreement",
	"Software License Agreement",
	"Freelancer Contract",
	"Intellectual Property Assignment",
	"Co-Founder Agreement",
	"Stock Option Agreement",
	"Investment Agreement",
	"Terms of Service",
	"Privacy Policy",
	"Data Processing Agreement",
	"SAAS Agreement",
}

// Jurisdictions is the catalog of governing-law regions
var Jurisdictions = []string{
	"Alabama", "Alaska", "Arizona", "Arkansas", "California", "Colorado", "Connecticut", "Delaware",
	"Florida", "Georgia", "Hawaii", "Idaho", "Illinois", "Indiana", "Iowa", "Kansas", "Kentucky",
	"Louisiana", "Maine", "Maryland", "Massachusetts", "Michigan", "Minnesota", "Mississippi",
	"Missouri", "Montana", "Nebraska", "Nevada", "New Hampshire", "New Jersey", "New Mexico",
	"New York", "North Carolina", "North Dakota", "Ohio", "Oklahoma", "Oregon", "Pennsylvania",
	"Rhode Island", "South Carolina", "South Dakota", "Tennessee", "Texas", "Utah", "Vermont",
	"Virginia", "Washington", "West Virginia", "Wisconsin", "Wyoming",
}

var (
	contractTypeSet = toSet(ContractTypes)
	jurisdictionSet = toSet(Jurisdictions)
)

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

// IsContractType reports whether name is in the contract type catalog
func IsContractType(name string) bool {
	return contractTypeSet[name]
}

// IsJurisdiction reports whether name is in the jurisdiction catalog
func IsJurisdiction(name string) bool {
	return jurisdictionSet[name]
}
