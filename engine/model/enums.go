package model

type ComponentType string

const (
	ComponentTypeApplication          ComponentType = "application"
	ComponentTypeFramework            ComponentType = "framework"
	ComponentTypeLibrary              ComponentType = "library"
	ComponentTypeContainer            ComponentType = "container"
	ComponentTypePlatform             ComponentType = "platform"
	ComponentTypeOperatingSystem      ComponentType = "operating-system"
	ComponentTypeDevice               ComponentType = "device"
	ComponentTypeDeviceDriver         ComponentType = "device-driver"
	ComponentTypeFirmware             ComponentType = "firmware"
	ComponentTypeFile                 ComponentType = "file"
	ComponentTypeMachineLearningModel ComponentType = "machine-learning-model"
	ComponentTypeData                 ComponentType = "data"
	ComponentTypeCryptographicAsset   ComponentType = "cryptographic-asset"
)

type ComponentScope string

const (
	ScopeRequired ComponentScope = "required"
	ScopeOptional ComponentScope = "optional"
	ScopeExcluded ComponentScope = "excluded"
)

type HashAlgorithm string

const (
	HashMD5        HashAlgorithm = "MD5"
	HashSHA1       HashAlgorithm = "SHA-1"
	HashSHA256     HashAlgorithm = "SHA-256"
	HashSHA384     HashAlgorithm = "SHA-384"
	HashSHA512     HashAlgorithm = "SHA-512"
	HashSHA3_256   HashAlgorithm = "SHA3-256"
	HashSHA3_384   HashAlgorithm = "SHA3-384"
	HashSHA3_512   HashAlgorithm = "SHA3-512"
	HashBLAKE2b256 HashAlgorithm = "BLAKE2b-256"
	HashBLAKE2b384 HashAlgorithm = "BLAKE2b-384"
	HashBLAKE2b512 HashAlgorithm = "BLAKE2b-512"
	HashBLAKE3     HashAlgorithm = "BLAKE3"
)

type ExternalReferenceType string

const (
	ExternalReferenceVCS                     ExternalReferenceType = "vcs"
	ExternalReferenceIssueTracker            ExternalReferenceType = "issue-tracker"
	ExternalReferenceWebsite                 ExternalReferenceType = "website"
	ExternalReferenceAdvisories              ExternalReferenceType = "advisories"
	ExternalReferenceBOM                     ExternalReferenceType = "bom"
	ExternalReferenceMailingList             ExternalReferenceType = "mailing-list"
	ExternalReferenceSocial                  ExternalReferenceType = "social"
	ExternalReferenceChat                    ExternalReferenceType = "chat"
	ExternalReferenceDocumentation           ExternalReferenceType = "documentation"
	ExternalReferenceSupport                 ExternalReferenceType = "support"
	ExternalReferenceDistribution            ExternalReferenceType = "distribution"
	ExternalReferenceLicense                 ExternalReferenceType = "license"
	ExternalReferenceBuildMeta               ExternalReferenceType = "build-meta"
	ExternalReferenceBuildSystem             ExternalReferenceType = "build-system"
	ExternalReferenceOther                   ExternalReferenceType = "other"
	ExternalReferenceReleaseNotes            ExternalReferenceType = "release-notes"
	ExternalReferenceDistributionIntake      ExternalReferenceType = "distribution-intake"
	ExternalReferenceSecurityContact         ExternalReferenceType = "security-contact"
	ExternalReferenceModelCard               ExternalReferenceType = "model-card"
	ExternalReferenceLog                     ExternalReferenceType = "log"
	ExternalReferenceConfiguration           ExternalReferenceType = "configuration"
	ExternalReferenceEvidence                ExternalReferenceType = "evidence"
	ExternalReferenceFormulation             ExternalReferenceType = "formulation"
	ExternalReferenceAttestation             ExternalReferenceType = "attestation"
	ExternalReferenceThreatModel             ExternalReferenceType = "threat-model"
	ExternalReferenceAdversaryModel          ExternalReferenceType = "adversary-model"
	ExternalReferenceRiskAssessment          ExternalReferenceType = "risk-assessment"
	ExternalReferenceVulnerabilityAssertion  ExternalReferenceType = "vulnerability-assertion"
	ExternalReferenceExploitabilityStatement ExternalReferenceType = "exploitability-statement"
	ExternalReferencePentestReport           ExternalReferenceType = "pentest-report"
	ExternalReferenceStaticAnalysisReport    ExternalReferenceType = "static-analysis-report"
	ExternalReferenceDynamicAnalysisReport   ExternalReferenceType = "dynamic-analysis-report"
	ExternalReferenceRuntimeAnalysisReport   ExternalReferenceType = "runtime-analysis-report"
	ExternalReferenceComponentAnalysisReport ExternalReferenceType = "component-analysis-report"
	ExternalReferenceMaturityReport          ExternalReferenceType = "maturity-report"
	ExternalReferenceCertificationReport     ExternalReferenceType = "certification-report"
	ExternalReferenceCodifiedInfrastructure  ExternalReferenceType = "codified-infrastructure"
	ExternalReferenceQualityMetrics          ExternalReferenceType = "quality-metrics"
	ExternalReferencePOAM                    ExternalReferenceType = "poam"
	ExternalReferenceSourceDistribution      ExternalReferenceType = "source-distribution"
	ExternalReferenceElectronicSignature     ExternalReferenceType = "electronic-signature"
	ExternalReferenceDigitalSignature        ExternalReferenceType = "digital-signature"
	ExternalReferenceRFC9116                 ExternalReferenceType = "rfc-9116"
)

type LifecyclePhase string

const (
	PhaseDesign       LifecyclePhase = "design"
	PhasePreBuild     LifecyclePhase = "pre-build"
	PhaseBuild        LifecyclePhase = "build"
	PhasePostBuild    LifecyclePhase = "post-build"
	PhaseOperations   LifecyclePhase = "operations"
	PhaseDiscovery    LifecyclePhase = "discovery"
	PhaseDecommission LifecyclePhase = "decommission"
)

type LicenseAcknowledgement string

const (
	AcknowledgementDeclared  LicenseAcknowledgement = "declared"
	AcknowledgementConcluded LicenseAcknowledgement = "concluded"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
	SeverityNone     Severity = "none"
	SeverityUnknown  Severity = "unknown"
)

type RatingMethod string

const (
	RatingCVSSv2  RatingMethod = "CVSSv2"
	RatingCVSSv3  RatingMethod = "CVSSv3"
	RatingCVSSv31 RatingMethod = "CVSSv31"
	RatingCVSSv4  RatingMethod = "CVSSv4"
	RatingOWASP   RatingMethod = "OWASP"
	RatingSSVC    RatingMethod = "SSVC"
	RatingOther   RatingMethod = "other"
)

type AnalysisState string

const (
	AnalysisResolved             AnalysisState = "resolved"
	AnalysisResolvedWithPedigree AnalysisState = "resolved_with_pedigree"
	AnalysisExploitable          AnalysisState = "exploitable"
	AnalysisInTriage             AnalysisState = "in_triage"
	AnalysisFalsePositive        AnalysisState = "false_positive"
	AnalysisNotAffected          AnalysisState = "not_affected"
)

type AnalysisJustification string

const (
	JustificationCodeNotPresent               AnalysisJustification = "code_not_present"
	JustificationCodeNotReachable             AnalysisJustification = "code_not_reachable"
	JustificationRequiresConfiguration        AnalysisJustification = "requires_configuration"
	JustificationRequiresDependency           AnalysisJustification = "requires_dependency"
	JustificationRequiresEnvironment          AnalysisJustification = "requires_environment"
	JustificationProtectedByCompiler          AnalysisJustification = "protected_by_compiler"
	JustificationProtectedAtRuntime           AnalysisJustification = "protected_at_runtime"
	JustificationProtectedAtPerimeter         AnalysisJustification = "protected_at_perimeter"
	JustificationProtectedByMitigatingControl AnalysisJustification = "protected_by_mitigating_control"
)

type AnalysisResponse string

const (
	ResponseCanNotFix           AnalysisResponse = "can_not_fix"
	ResponseWillNotFix          AnalysisResponse = "will_not_fix"
	ResponseUpdate              AnalysisResponse = "update"
	ResponseRollback            AnalysisResponse = "rollback"
	ResponseWorkaroundAvailable AnalysisResponse = "workaround_available"
)

type AffectedStatus string

const (
	StatusAffected   AffectedStatus = "affected"
	StatusUnaffected AffectedStatus = "unaffected"
	StatusUnknown    AffectedStatus = "unknown"
)

// EncodingBase64 is the only attachment encoding CycloneDX defines.
const EncodingBase64 = "base64"
