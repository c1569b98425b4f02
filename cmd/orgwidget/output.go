package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/alfredjeanlab/orgwidget/internal/model"
	"github.com/alfredjeanlab/orgwidget/internal/presence"
)

var stdout io.Writer = os.Stdout

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Fprintln(stdout, string(data))
	return nil
}

// printResult prints v as JSON when --json is set and with table otherwise.
func printResult(v any, table func(w io.Writer)) error {
	if jsonOutput {
		return printJSON(v)
	}
	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	table(tw)
	return tw.Flush()
}

func organizationTable(orgs ...*model.Organization) func(io.Writer) {
	return func(w io.Writer) {
		fmt.Fprintln(w, "ID\tNAME\tSTATUS")
		for _, o := range orgs {
			fmt.Fprintf(w, "%s\t%s\t%s\n", o.ID, o.Name, o.Status)
		}
	}
}

func costCenterTable(ccs ...*model.CostCenter) func(io.Writer) {
	return func(w io.Writer) {
		fmt.Fprintln(w, "ID\tORGANIZATION\tNAME")
		for _, cc := range ccs {
			fmt.Fprintf(w, "%s\t%s\t%s\n", cc.ID, cc.OrganizationID, cc.Name)
		}
	}
}

func roleTable(roles []*model.Role) func(io.Writer) {
	return func(w io.Writer) {
		fmt.Fprintln(w, "ID\tNAME\tPERMISSIONS")
		for _, r := range roles {
			fmt.Fprintf(w, "%s\t%s\t%d\n", r.ID, r.Name, len(r.Permissions))
		}
	}
}

func userTable(u *model.User) func(io.Writer) {
	return func(w io.Writer) {
		fmt.Fprintln(w, "EMAIL\tORGANIZATION\tCOST CENTER\tROLE")
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.Email, u.OrganizationID, u.CostCenterID, u.RoleID)
	}
}

func sessionTable(snap *model.SessionSnapshot) func(io.Writer) {
	return func(w io.Writer) {
		fmt.Fprintln(w, "ID\tAUTHENTICATED\tEMAIL")
		fmt.Fprintf(w, "%s\t%s\t%s\n", snap.ID, snap.AuthClaim(), snap.Email())
	}
}

func rosterTable(entries []presence.Entry) func(io.Writer) {
	return func(w io.Writer) {
		fmt.Fprintln(w, "SESSION\tEMAIL\tLAST ACTION\tLAST SEEN\tEXPIRED")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\n", e.SessionID, e.Email, e.LastAction, e.LastSeen.Format(time.DateTime), e.Expired)
		}
	}
}
