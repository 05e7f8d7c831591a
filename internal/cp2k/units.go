package cp2k

// AngstromPerBohr is the Bohr radius expressed in angstrom. Cell vectors in
// the CP2K log are reported in angstrom; dividing a volume by the cube of
// this constant converts it to atomic units.
const AngstromPerBohr = 0.52917720859
