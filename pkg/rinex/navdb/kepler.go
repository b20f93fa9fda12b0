package navdb

import (
	"fmt"
	"math"

	"github.com/bkg-gnss/gnsscodec/pkg/gnss"
)

// Kepler is the classical element set a Keplerian ephemeris (GPS, Galileo,
// BeiDou MEO/IGSO, QZSS, NavIC) carries, already unpacked from its Field
// slots by the caller.
type Kepler struct {
	Toe      float64 // seconds of week
	SqrtA    float64
	Ecc      float64
	M0       float64
	Omega0   float64
	Omega    float64 // argument of perigee
	OmegaDot float64
	I0       float64
	IDOT     float64
	DeltaN   float64
	Cuc, Cus float64
	Crc, Crs float64
	Cic, Cis float64
	ADot     float64 // CNAV semi-major-axis rate; zero if not broadcast
}

// orbitConstants holds the gravitational parameter, nominal earth rotation
// rate and relativistic-correction factor used to evaluate a Kepler
// equation set, per constellation ICD. These are standard published
// constants (GPS IS-GPS-200, Galileo OS-SIS-ICD, BeiDou ICD), not specific
// to any one retrieved source.
type orbitConstants struct {
	GM    float64 // m^3/s^2
	Omega float64 // rad/s, WGS-84/PZ-90/CGCS2000 earth rotation rate
	DtrF  float64 // relativistic correction factor, s/sqrt(m)
}

var constantsPerSystem = map[gnss.System]orbitConstants{
	gnss.SysGPS:   {GM: 3.986005e14, Omega: 7.2921151467e-5, DtrF: -4.442807633e-10},
	gnss.SysQZSS:  {GM: 3.986005e14, Omega: 7.2921151467e-5, DtrF: -4.442807633e-10},
	gnss.SysGAL:   {GM: 3.986004418e14, Omega: 7.2921151467e-5, DtrF: -4.442807309e-10},
	gnss.SysBDS:   {GM: 3.986004418e14, Omega: 7.2921150e-5, DtrF: -4.442807309e-10},
	gnss.SysNavIC: {GM: 3.986005e14, Omega: 7.2921151467e-5, DtrF: -4.442807633e-10},
}

// maxKeplerIter bounds the eccentric-anomaly fixed-point iteration.
const maxKeplerIter = 30

// keplerTolerance is the convergence threshold on successive E_k estimates.
const keplerTolerance = 1e-10

// beidouGeoSin5, beidouGeoCos5 are sin(-5 deg) and cos(-5 deg), the fixed
// inclination rotation BeiDou GEO satellites apply on top of the ordinary
// orbit-to-ECEF rotation (ref RTKLIB's Eph2Pos SIN_5/COS_5 constants).
const (
	beidouGeoSin5 = -0.0871557427476582
	beidouGeoCos5 = 0.9961946980917456
)

// State is a propagated satellite position/velocity/clock-correction,
// computed at a requested time of transmission tk seconds away from Toe.
type State struct {
	// ECEF position, km.
	X, Y, Z float64
	// ECEF velocity, km/second.
	VX, VY, VZ float64
	// RelativisticClockCorrection is the relativistic correction term
	// (seconds) to add to the broadcast clock polynomial.
	RelativisticClockCorrection float64
}

// isBeidouGEO reports whether prn identifies a BeiDou GEO satellite (PRNs
// 1-5 and 59-63, per BeiDou ICD table 4-1): these broadcast MEO/IGSO-style
// Keplerian elements but need an extra frame rotation to ECEF, since their
// orbit-plane frame never settles into the usual earth-fixed one.
func isBeidouGEO(prn uint8) bool {
	return prn <= 5 || prn >= 59
}

// Propagate solves Kepler's equation for the given element set and
// evaluates the satellite's ECEF state tk seconds after Toe (§4.6 "Kepler
// evaluation"): compute the corrected mean motion and mean anomaly,
// iterate E_k, derive true anomaly and the three harmonic perturbation
// corrections (argument of latitude, radius, inclination), rotate into
// ECEF accounting for earth rotation during signal transit, and return the
// relativistic clock correction alongside position/velocity. BeiDou GEO
// satellites (sv.PRN per isBeidouGEO) take a separate rotation, per §4.6.
//
// tk is the time from ephemeris reference epoch (signal transmission time
// minus Toe), already leap/week-rollover corrected by the caller.
func Propagate(sv gnss.SV, k Kepler, tk float64) (State, error) {
	c, ok := constantsPerSystem[sv.Sys]
	if !ok {
		return State{}, fmt.Errorf("navdb: no Kepler propagation constants for %s", sv.Sys)
	}

	a := k.SqrtA * k.SqrtA
	if k.ADot != 0 {
		a += k.ADot * tk
	}

	n0 := math.Sqrt(c.GM / (a * a * a))
	n := n0 + k.DeltaN
	mk := k.M0 + n*tk

	ek := mk
	for i := 0; i < maxKeplerIter; i++ {
		next := mk + k.Ecc*math.Sin(ek)
		if math.Abs(next-ek) < keplerTolerance {
			ek = next
			break
		}
		ek = next
	}

	sinEk, cosEk := math.Sin(ek), math.Cos(ek)
	vk := math.Atan2(math.Sqrt(1-k.Ecc*k.Ecc)*sinEk, cosEk-k.Ecc)

	phik := vk + k.Omega
	sin2phi, cos2phi := math.Sin(2*phik), math.Cos(2*phik)

	duk := k.Cus*sin2phi + k.Cuc*cos2phi
	uk := phik + duk

	drk := k.Crs*sin2phi + k.Crc*cos2phi
	rk := a*(1-k.Ecc*cosEk) + drk

	dik := k.Cis*sin2phi + k.Cic*cos2phi
	ik := k.I0 + k.IDOT*tk + dik

	geo := sv.Sys == gnss.SysBDS && isBeidouGEO(sv.PRN)

	var omegaK, fdOmegaK float64
	if geo {
		// BeiDou GEO: no (·-Omega) term, since the orbit-plane frame is
		// rotated to ECEF separately below instead of folding earth
		// rotation into omegaK directly.
		omegaK = k.Omega0 + k.OmegaDot*tk - c.Omega*k.Toe
		fdOmegaK = k.OmegaDot
	} else {
		omegaK = k.Omega0 + (k.OmegaDot-c.Omega)*tk - c.Omega*k.Toe
		fdOmegaK = k.OmegaDot - c.Omega
	}

	xk := rk * math.Cos(uk)
	yk := rk * math.Sin(uk)

	sinOmegaK, cosOmegaK := math.Sin(omegaK), math.Cos(omegaK)
	sinIk, cosIk := math.Sin(ik), math.Cos(ik)

	xgk := xk*cosOmegaK - yk*cosIk*sinOmegaK
	ygk := xk*sinOmegaK + yk*cosIk*cosOmegaK
	zgk := yk * sinIk

	// First derivatives, for velocity.
	fdEk := n / (1 - k.Ecc*cosEk)
	fdPhik := math.Sqrt((1+k.Ecc)/(1-k.Ecc)) *
		math.Pow(math.Cos(vk/2)/math.Cos(ek/2), 2) * fdEk
	fdUk := (k.Cus*cos2phi-k.Cuc*sin2phi)*fdPhik*2 + fdPhik
	fdRk := a*k.Ecc*sinEk*fdEk + 2*(k.Crs*cos2phi-k.Crc*sin2phi)*fdPhik
	fdIk := k.IDOT + 2*(k.Cis*cos2phi-k.Cic*sin2phi)*fdPhik

	fdXk := fdRk*math.Cos(uk) - rk*fdUk*math.Sin(uk)
	fdYk := fdRk*math.Sin(uk) + rk*fdUk*math.Cos(uk)

	fdXgk := fdXk*cosOmegaK - fdYk*cosIk*sinOmegaK - (xk*sinOmegaK+yk*cosIk*cosOmegaK)*fdOmegaK + yk*sinIk*sinOmegaK*fdIk
	fdYgk := fdXk*sinOmegaK + fdYk*cosIk*cosOmegaK + (xk*cosOmegaK-yk*cosIk*sinOmegaK)*fdOmegaK - yk*sinIk*cosOmegaK*fdIk
	fdZgk := fdYk*sinIk + yk*cosIk*fdIk

	var st State
	if geo {
		// Extra GEO-specific rotation: a fixed 5 deg tilt about the
		// x-axis, then a time-varying rotation about z by -c.Omega*tk
		// (earth rotation during signal transit, applied separately
		// from the usual omegaK term above).
		theta := c.Omega * tk
		sinTheta, cosTheta := math.Sin(theta), math.Cos(theta)

		st.X = xgk*cosTheta + ygk*sinTheta*beidouGeoCos5 + zgk*sinTheta*beidouGeoSin5
		st.Y = -xgk*sinTheta + ygk*cosTheta*beidouGeoCos5 + zgk*cosTheta*beidouGeoSin5
		st.Z = -ygk*beidouGeoSin5 + zgk*beidouGeoCos5

		st.VX = fdXgk*cosTheta - xgk*sinTheta*c.Omega +
			fdYgk*sinTheta*beidouGeoCos5 + ygk*cosTheta*c.Omega*beidouGeoCos5 +
			fdZgk*sinTheta*beidouGeoSin5 + zgk*cosTheta*c.Omega*beidouGeoSin5
		st.VY = -fdXgk*sinTheta - xgk*cosTheta*c.Omega +
			fdYgk*cosTheta*beidouGeoCos5 - ygk*sinTheta*c.Omega*beidouGeoCos5 +
			fdZgk*cosTheta*beidouGeoSin5 - zgk*sinTheta*c.Omega*beidouGeoSin5
		st.VZ = -fdYgk*beidouGeoSin5 + fdZgk*beidouGeoCos5
	} else {
		st.X, st.Y, st.Z = xgk, ygk, zgk
		st.VX, st.VY, st.VZ = fdXgk, fdYgk, fdZgk
	}

	st.RelativisticClockCorrection = c.DtrF * k.Ecc * k.SqrtA * sinEk

	// Position/velocity above are computed in meters and meters/second;
	// callers expect them in km and km/s, per State's field comments.
	const metersPerKm = 1000.0
	st.X /= metersPerKm
	st.Y /= metersPerKm
	st.Z /= metersPerKm
	st.VX /= metersPerKm
	st.VY /= metersPerKm
	st.VZ /= metersPerKm

	return st, nil
}
