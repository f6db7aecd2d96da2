package suggest

// Keywords is the static reference keyword list offered when no finer
// context can be determined. Order is presentation order.
var Keywords = []string{
	"SELECT",
	"FROM",
	"WHERE",
	"INSERT",
	"INTO",
	"VALUES",
	"UPDATE",
	"SET",
	"DELETE",
	"CREATE",
	"TABLE",
	"DATABASE",
	"DROP",
	"ALTER",
	"ADD",
	"COLUMN",
	"INDEX",
	"JOIN",
	"INNER",
	"LEFT",
	"RIGHT",
	"OUTER",
	"ON",
	"GROUP",
	"BY",
	"ORDER",
	"HAVING",
	"LIMIT",
	"AS",
	"DISTINCT",
	"COUNT",
	"SUM",
	"AVG",
	"MIN",
	"MAX",
	"AND",
	"OR",
	"NOT",
	"NULL",
	"IS",
	"TRUE",
	"FALSE",
	"VARCHAR",
	"INT",
	"TEXT",
	"DATE",
	"DATETIME",
}
