package oa

// Construction method names shared by catalogues, advisors and classifiers
const (
	MethodBose               = "Bose"
	MethodBush               = "Bush"
	MethodBoseBush           = "Bose-Bush"
	MethodHadamardSylvester  = "Hadamard-Sylvester"
	MethodHadamardPaley      = "Hadamard-Paley"
	MethodAddelmanKempthorne = "Addelman-Kempthorne"
	MethodRaoHamming         = "Rao-Hamming"
	MethodUnknown            = "Unknown"
	MethodCatalogue          = "Catalogue"
)
