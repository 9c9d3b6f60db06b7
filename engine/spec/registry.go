package spec

import (
	"fmt"
	"regexp"

	"github.com/compozy/bomkit/engine/model"
)

// Spec is one immutable registry entry.
type Spec struct {
	version        Version
	formats        map[Format]struct{}
	features       map[Feature]struct{}
	componentTypes map[model.ComponentType]struct{}
	hashAlgorithms map[model.HashAlgorithm]struct{}
	extRefTypes    map[model.ExternalReferenceType]struct{}
	ratingMethods  map[model.RatingMethod]struct{}
}

var hashValuePatterns = map[model.HashAlgorithm]*regexp.Regexp{
	model.HashMD5:        regexp.MustCompile(`^[a-fA-F0-9]{32}$`),
	model.HashSHA1:       regexp.MustCompile(`^[a-fA-F0-9]{40}$`),
	model.HashSHA256:     regexp.MustCompile(`^[a-fA-F0-9]{64}$`),
	model.HashSHA384:     regexp.MustCompile(`^[a-fA-F0-9]{96}$`),
	model.HashSHA512:     regexp.MustCompile(`^[a-fA-F0-9]{128}$`),
	model.HashSHA3_256:   regexp.MustCompile(`^[a-fA-F0-9]{64}$`),
	model.HashSHA3_384:   regexp.MustCompile(`^[a-fA-F0-9]{96}$`),
	model.HashSHA3_512:   regexp.MustCompile(`^[a-fA-F0-9]{128}$`),
	model.HashBLAKE2b256: regexp.MustCompile(`^[a-fA-F0-9]{64}$`),
	model.HashBLAKE2b384: regexp.MustCompile(`^[a-fA-F0-9]{96}$`),
	model.HashBLAKE2b512: regexp.MustCompile(`^[a-fA-F0-9]{128}$`),
	model.HashBLAKE3:     regexp.MustCompile(`^([a-fA-F0-9]{32}|[a-fA-F0-9]{40}|[a-fA-F0-9]{64}|[a-fA-F0-9]{96}|[a-fA-F0-9]{128})$`),
}

// HashValuePattern returns the content pattern every schema applies to alg.
func HashValuePattern(alg model.HashAlgorithm) (string, bool) {
	re, ok := hashValuePatterns[alg]
	if !ok {
		return "", false
	}
	return re.String(), true
}

var (
	componentTypes1dot0 = []model.ComponentType{
		model.ComponentTypeApplication,
		model.ComponentTypeFramework,
		model.ComponentTypeLibrary,
		model.ComponentTypeOperatingSystem,
		model.ComponentTypeDevice,
		model.ComponentTypeFile,
	}
	componentTypes1dot2 = append(cloneSlice(componentTypes1dot0),
		model.ComponentTypeContainer,
		model.ComponentTypeFirmware,
	)
	componentTypes1dot5 = append(cloneSlice(componentTypes1dot2),
		model.ComponentTypePlatform,
		model.ComponentTypeDeviceDriver,
		model.ComponentTypeMachineLearningModel,
		model.ComponentTypeData,
	)
	componentTypes1dot6 = append(cloneSlice(componentTypes1dot5),
		model.ComponentTypeCryptographicAsset,
	)

	hashAlgorithms1dot0 = []model.HashAlgorithm{
		model.HashMD5,
		model.HashSHA1,
		model.HashSHA256,
		model.HashSHA384,
		model.HashSHA512,
		model.HashSHA3_256,
		model.HashSHA3_384,
		model.HashSHA3_512,
	}
	hashAlgorithms1dot2 = append(cloneSlice(hashAlgorithms1dot0),
		model.HashBLAKE2b256,
		model.HashBLAKE2b384,
		model.HashBLAKE2b512,
		model.HashBLAKE3,
	)

	extRefTypes1dot1 = []model.ExternalReferenceType{
		model.ExternalReferenceVCS,
		model.ExternalReferenceIssueTracker,
		model.ExternalReferenceWebsite,
		model.ExternalReferenceAdvisories,
		model.ExternalReferenceBOM,
		model.ExternalReferenceMailingList,
		model.ExternalReferenceSocial,
		model.ExternalReferenceChat,
		model.ExternalReferenceDocumentation,
		model.ExternalReferenceSupport,
		model.ExternalReferenceDistribution,
		model.ExternalReferenceLicense,
		model.ExternalReferenceBuildMeta,
		model.ExternalReferenceBuildSystem,
		model.ExternalReferenceOther,
	}
	extRefTypes1dot4 = append(cloneSlice(extRefTypes1dot1),
		model.ExternalReferenceReleaseNotes,
	)
	extRefTypes1dot5 = append(cloneSlice(extRefTypes1dot4),
		model.ExternalReferenceDistributionIntake,
		model.ExternalReferenceSecurityContact,
		model.ExternalReferenceModelCard,
		model.ExternalReferenceLog,
		model.ExternalReferenceConfiguration,
		model.ExternalReferenceEvidence,
		model.ExternalReferenceFormulation,
		model.ExternalReferenceAttestation,
		model.ExternalReferenceThreatModel,
		model.ExternalReferenceAdversaryModel,
		model.ExternalReferenceRiskAssessment,
		model.ExternalReferenceVulnerabilityAssertion,
		model.ExternalReferenceExploitabilityStatement,
		model.ExternalReferencePentestReport,
		model.ExternalReferenceStaticAnalysisReport,
		model.ExternalReferenceDynamicAnalysisReport,
		model.ExternalReferenceRuntimeAnalysisReport,
		model.ExternalReferenceComponentAnalysisReport,
		model.ExternalReferenceMaturityReport,
		model.ExternalReferenceCertificationReport,
		model.ExternalReferenceCodifiedInfrastructure,
		model.ExternalReferenceQualityMetrics,
		model.ExternalReferencePOAM,
	)
	extRefTypes1dot6 = append(cloneSlice(extRefTypes1dot5),
		model.ExternalReferenceSourceDistribution,
		model.ExternalReferenceElectronicSignature,
		model.ExternalReferenceDigitalSignature,
		model.ExternalReferenceRFC9116,
	)

	ratingMethods1dot4 = []model.RatingMethod{
		model.RatingCVSSv2,
		model.RatingCVSSv3,
		model.RatingCVSSv31,
		model.RatingOWASP,
		model.RatingOther,
	}
	ratingMethods1dot5 = append(cloneSlice(ratingMethods1dot4),
		model.RatingCVSSv4,
		model.RatingSSVC,
	)
)

var registry = map[Version]*Spec{
	V1_0: newSpec(V1_0, []Format{FormatXML}, features1dot0,
		componentTypes1dot0, hashAlgorithms1dot0, nil, nil),
	V1_1: newSpec(V1_1, []Format{FormatXML}, features1dot1,
		componentTypes1dot0, hashAlgorithms1dot0, extRefTypes1dot1, nil),
	V1_2: newSpec(V1_2, []Format{FormatXML, FormatJSON}, features1dot2,
		componentTypes1dot2, hashAlgorithms1dot2, extRefTypes1dot1, nil),
	V1_3: newSpec(V1_3, []Format{FormatXML, FormatJSON}, features1dot3,
		componentTypes1dot2, hashAlgorithms1dot2, extRefTypes1dot1, nil),
	V1_4: newSpec(V1_4, []Format{FormatXML, FormatJSON}, features1dot4,
		componentTypes1dot2, hashAlgorithms1dot2, extRefTypes1dot4, ratingMethods1dot4),
	V1_5: newSpec(V1_5, []Format{FormatXML, FormatJSON}, features1dot5,
		componentTypes1dot5, hashAlgorithms1dot2, extRefTypes1dot5, ratingMethods1dot5),
	V1_6: newSpec(V1_6, []Format{FormatXML, FormatJSON}, features1dot6,
		componentTypes1dot6, hashAlgorithms1dot2, extRefTypes1dot6, ratingMethods1dot5),
}

func newSpec(
	v Version,
	formats []Format,
	features []Feature,
	componentTypes []model.ComponentType,
	hashAlgorithms []model.HashAlgorithm,
	extRefTypes []model.ExternalReferenceType,
	ratingMethods []model.RatingMethod,
) *Spec {
	return &Spec{
		version:        v,
		formats:        toSet(formats),
		features:       toSet(features),
		componentTypes: toSet(componentTypes),
		hashAlgorithms: toSet(hashAlgorithms),
		extRefTypes:    toSet(extRefTypes),
		ratingMethods:  toSet(ratingMethods),
	}
}

func toSet[T comparable](in []T) map[T]struct{} {
	out := make(map[T]struct{}, len(in))
	for _, v := range in {
		out[v] = struct{}{}
	}
	return out
}

func cloneSlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}

// Get returns the registry entry for v.
func Get(v Version) (*Spec, error) {
	s, ok := registry[v]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVersion, string(v))
	}
	return s, nil
}

// MustGet is like Get but panics on unknown versions.
func MustGet(v Version) *Spec {
	s, err := Get(v)
	if err != nil {
		panic(err)
	}
	return s
}

// SupportsFormat reports whether version v can be rendered as f.
// Unknown versions support nothing.
func SupportsFormat(v Version, f Format) bool {
	s, ok := registry[v]
	return ok && s.SupportsFormat(f)
}

// SupportsFeature reports whether version v supports feature.
// Unknown versions support nothing.
func SupportsFeature(v Version, feature Feature) bool {
	s, ok := registry[v]
	return ok && s.SupportsFeature(feature)
}

func (s *Spec) Version() Version {
	return s.version
}

func (s *Spec) String() string {
	return "CycloneDX " + string(s.version)
}

func (s *Spec) SupportsFormat(f Format) bool {
	_, ok := s.formats[f]
	return ok
}

// Formats returns the supported formats, XML first.
func (s *Spec) Formats() []Format {
	out := make([]Format, 0, len(s.formats))
	for _, f := range []Format{FormatXML, FormatJSON} {
		if s.SupportsFormat(f) {
			out = append(out, f)
		}
	}
	return out
}

func (s *Spec) SupportsFeature(f Feature) bool {
	_, ok := s.features[f]
	return ok
}

// Features returns the supported features in AllFeatures order.
func (s *Spec) Features() []Feature {
	out := make([]Feature, 0, len(s.features))
	for _, f := range AllFeatures() {
		if s.SupportsFeature(f) {
			out = append(out, f)
		}
	}
	return out
}

func (s *Spec) SupportsComponentType(t model.ComponentType) bool {
	_, ok := s.componentTypes[t]
	return ok
}

func (s *Spec) SupportsHashAlgorithm(alg model.HashAlgorithm) bool {
	_, ok := s.hashAlgorithms[alg]
	return ok
}

// SupportsHashValue reports whether content is a valid digest for alg under this version.
func (s *Spec) SupportsHashValue(alg model.HashAlgorithm, content string) bool {
	if !s.SupportsHashAlgorithm(alg) {
		return false
	}
	re, ok := hashValuePatterns[alg]
	return ok && re.MatchString(content)
}

func (s *Spec) SupportsExternalReferenceType(t model.ExternalReferenceType) bool {
	_, ok := s.extRefTypes[t]
	return ok
}

func (s *Spec) SupportsRatingMethod(m model.RatingMethod) bool {
	_, ok := s.ratingMethods[m]
	return ok
}

// ComponentTypes returns the supported component types in declaration order.
func (s *Spec) ComponentTypes() []model.ComponentType {
	return orderedMembers(s.componentTypes, componentTypes1dot6)
}

func (s *Spec) HashAlgorithms() []model.HashAlgorithm {
	return orderedMembers(s.hashAlgorithms, hashAlgorithms1dot2)
}

func (s *Spec) ExternalReferenceTypes() []model.ExternalReferenceType {
	return orderedMembers(s.extRefTypes, extRefTypes1dot6)
}

func (s *Spec) RatingMethods() []model.RatingMethod {
	return orderedMembers(s.ratingMethods, ratingMethods1dot5)
}

func orderedMembers[T comparable](set map[T]struct{}, universe []T) []T {
	out := make([]T, 0, len(set))
	for _, v := range universe {
		if _, ok := set[v]; ok {
			out = append(out, v)
		}
	}
	return out
}

// Namespace is the XML namespace of the version's schema.
func (s *Spec) Namespace() string {
	return "http://cyclonedx.org/schema/bom/" + string(s.version)
}

// JSONSchemaURI is the `$schema` value a JSON document of this version carries.
// Versions without JSON support return an empty string.
func (s *Spec) JSONSchemaURI() string {
	if !s.SupportsFormat(FormatJSON) {
		return ""
	}
	return "http://cyclonedx.org/schema/bom-" + string(s.version) + ".schema.json"
}

// Namespace returns the XML namespace for v, or an empty string for unknown versions.
func Namespace(v Version) string {
	s, ok := registry[v]
	if !ok {
		return ""
	}
	return s.Namespace()
}

func JSONSchemaURI(v Version) string {
	s, ok := registry[v]
	if !ok {
		return ""
	}
	return s.JSONSchemaURI()
}
