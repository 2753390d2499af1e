// Package candidacyservice owns candidate filing for school elections: who
// may run, for which position, under which partylist, and how many seats a
// position or partylist may fill. Admission is decided by one rule engine
// shared by the create, edit, and dry-run paths.
package candidacyservice
